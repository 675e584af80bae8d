package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// ErrNameRequired rejects enrichment lookups without a subject name.
var ErrNameRequired = errors.New("enrichment lookup requires a name")

// EnrichmentProvider is one named external source in the registry.
type EnrichmentProvider interface {
	Name() string
	Kind() string
	Search(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error)
}

// ProviderFunc adapts a function into an EnrichmentProvider.
type ProviderFunc struct {
	ProviderName string
	ProviderKind string
	Fn           func(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error)
}

func (p ProviderFunc) Name() string { return p.ProviderName }
func (p ProviderFunc) Kind() string { return p.ProviderKind }
func (p ProviderFunc) Search(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error) {
	return p.Fn(ctx, name, birthDate)
}

// EnrichmentRegistry fans one lookup out to every registered provider and
// aggregates their findings. A failing provider is skipped, never fatal.
type EnrichmentRegistry struct {
	providers []EnrichmentProvider
	logger    zerolog.Logger
}

// NewEnrichmentRegistry creates a registry over the given providers.
func NewEnrichmentRegistry(logger zerolog.Logger, providers ...EnrichmentProvider) *EnrichmentRegistry {
	return &EnrichmentRegistry{providers: providers, logger: logger}
}

// Lookup queries all providers concurrently and assembles the aggregate
// record: per-provider findings, a short summary, and citations collected
// from match provenance links.
func (r *EnrichmentRegistry) Lookup(ctx context.Context, name, birthDate string) (ports.EnrichmentRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ports.EnrichmentRecord{}, ErrNameRequired
	}
	birthDate = normalizeBirthDate(birthDate)

	findings := make([]*ports.ProviderFindings, len(r.providers))
	var wg conc.WaitGroup
	for i, p := range r.providers {
		wg.Go(func() {
			matches, err := p.Search(ctx, name, birthDate)
			if err != nil {
				r.logger.Warn().Err(err).Str("provider", p.Name()).Msg("enrichment provider failed, skipping")
				return
			}
			findings[i] = &ports.ProviderFindings{Provider: p.Name(), Kind: p.Kind(), Matches: matches}
		})
	}
	wg.Wait()

	rec := ports.EnrichmentRecord{
		Query: ports.EnrichmentQuery{Name: name, BirthDate: birthDate},
	}
	total := 0
	var sources []string
	for _, f := range findings {
		if f == nil {
			continue
		}
		rec.Providers = append(rec.Providers, *f)
		total += len(f.Matches)
		sources = append(sources, f.Provider)
		for _, m := range f.Matches {
			if m.SourceURL != "" {
				rec.Citations = append(rec.Citations, ports.Citation{Title: m.Name, URL: m.SourceURL})
			}
		}
	}
	rec.Summary = buildSummary(name, birthDate, total, sources)
	return rec, nil
}

func buildSummary(name, birthDate string, total int, sources []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "aggregated %d external candidates for %q", total, name)
	if birthDate != "" {
		fmt.Fprintf(&b, " (birth date %s)", birthDate)
	}
	if len(sources) > 0 {
		fmt.Fprintf(&b, ", sources: %s", strings.Join(sources, ", "))
	}
	return b.String()
}

// normalizeBirthDate coerces common input formats to "YYYY-MM-DD". Unknown
// formats pass through unchanged so providers can try their own parsing.
func normalizeBirthDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "2006-1-2", "2006/01/02", "2006/1/2", "20060102", "2006.01.02", "2006.1.2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

var _ ports.Enricher = (*EnrichmentRegistry)(nil)
