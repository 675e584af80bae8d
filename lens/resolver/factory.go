package resolver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/duegraph/entitylens/lens/config"
	"github.com/duegraph/entitylens/lens/db"
	"github.com/duegraph/entitylens/lens/resolver/adapters"
	ports "github.com/duegraph/entitylens/lens/resolver/ports"
	"github.com/duegraph/entitylens/lens/screening"
)

// Factory creates and wires resolution components from configuration.
type Factory struct {
	cfg *config.Config
	// db is optional; with the libsql driver a nil handle makes the factory
	// open the configured database path itself.
	db *sql.DB
	// dir is created once and shared, so the suggestion fetcher and the
	// orchestrator's strategies consult the same store.
	dir    ports.Directory
	logger zerolog.Logger
}

// NewFactory creates a new resolver factory.
func NewFactory(cfg *config.Config, db *sql.DB, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, db: db, logger: logger}
}

// CreateOrchestrator creates a fully wired Orchestrator from config. Remote
// collaborators without a configured endpoint fall back to no-ops, so a
// minimal config still yields a working internal-only pipeline.
func (f *Factory) CreateOrchestrator() (*Orchestrator, error) {
	dir, err := f.createDirectory()
	if err != nil {
		return nil, err
	}
	parser := f.createParser()
	external := f.createExternalSearcher()
	enricher := f.createEnricher()
	scanner, err := f.createScanner(dir)
	if err != nil {
		return nil, err
	}
	tracer := f.createTracer()

	return NewOrchestrator(
		NewConversation(),
		dir,
		parser,
		external,
		enricher,
		scanner,
		tracer,
		f.logger,
		Options{PrecheckLimit: f.cfg.Resolver.PrecheckLimit},
	), nil
}

// CreateSuggestFetcher creates a debounced fetcher bound to the configured
// directory backend.
func (f *Factory) CreateSuggestFetcher(ctx context.Context, apply func(query string, suggestions []ports.Candidate)) (*SuggestFetcher, error) {
	dir, err := f.createDirectory()
	if err != nil {
		return nil, err
	}
	return NewSuggestFetcher(ctx, dir, f.cfg.Suggest.Debounce, f.cfg.Suggest.Limit, apply, f.logger), nil
}

func (f *Factory) createDirectory() (ports.Directory, error) {
	if f.dir != nil {
		return f.dir, nil
	}
	switch f.cfg.Directory.Driver {
	case "libsql":
		if f.db == nil {
			conn, err := db.ConnectToDB(f.cfg.Directory.DatabasePath, f.logger)
			if err != nil {
				return nil, fmt.Errorf("open directory database: %w", err)
			}
			f.db = conn
		}
		dir, err := adapters.NewLibSQLDirectory(f.db)
		if err != nil {
			return nil, err
		}
		f.dir = dir
	case "", "memory":
		f.dir = adapters.NewMemoryDirectory()
	default:
		return nil, fmt.Errorf("unknown directory driver %q", f.cfg.Directory.Driver)
	}
	return f.dir, nil
}

func (f *Factory) createParser() ports.GraphParser {
	if f.cfg.External.GraphParserURL == "" {
		return &noOpParser{}
	}
	return adapters.NewHTTPGraphParser(f.cfg.External.GraphParserURL, f.cfg.External.Timeout, f.logger)
}

func (f *Factory) createExternalSearcher() ports.ExternalSearcher {
	if f.cfg.External.SearchURL == "" {
		return &noOpSearcher{}
	}
	return adapters.NewHTTPExternalSearcher(f.cfg.External.SearchURL, f.cfg.External.Timeout, f.logger)
}

func (f *Factory) createEnricher() ports.Enricher {
	if f.cfg.External.EnrichmentURL == "" {
		return adapters.NewEnrichmentRegistry(f.logger)
	}
	return adapters.NewEnrichmentRegistry(f.logger,
		adapters.NewHTTPEnrichmentProvider("Qichacha", "business-registry", f.cfg.External.EnrichmentURL, "/enrich/business", f.cfg.External.Timeout, f.logger),
		adapters.NewHTTPEnrichmentProvider("CourtRecords", "legal-judgment", f.cfg.External.EnrichmentURL, "/enrich/legal", f.cfg.External.Timeout, f.logger),
	)
}

func (f *Factory) createScanner(dir ports.Directory) (ports.NameScanner, error) {
	if f.cfg.Screening.WatchlistPath == "" {
		return screening.NewScanner(dir, nil, f.cfg.Screening.FuzzyLimit, f.logger), nil
	}
	wl, err := screening.LoadWatchlist(f.cfg.Screening.WatchlistPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	return screening.NewScanner(dir, wl, f.cfg.Screening.FuzzyLimit, f.logger), nil
}

func (f *Factory) createTracer() ports.Tracer {
	if !f.cfg.Resolver.EnableTracing {
		return NoopTracer{}
	}
	return adapters.NewZerologTracer(f.logger)
}

// noOpParser implements GraphParser when no backend is configured.
type noOpParser struct{}

func (*noOpParser) ParseAndResolve(ctx context.Context, text string) (ports.ParseResolution, error) {
	return ports.ParseResolution{}, nil
}

// noOpSearcher implements ExternalSearcher when no backend is configured.
type noOpSearcher struct{}

func (*noOpSearcher) Search(ctx context.Context, text string, subject *ports.ParsedSubject) ([]ports.Candidate, error) {
	return nil, nil
}

var (
	_ ports.GraphParser      = (*noOpParser)(nil)
	_ ports.ExternalSearcher = (*noOpSearcher)(nil)
)
