package resolverports

import "context"

// ExternalSearcher queries last-resort external providers (MCP) with the raw
// text and, when available, the parsed subject as a structured hint.
type ExternalSearcher interface {
	Search(ctx context.Context, text string, subject *ParsedSubject) ([]Candidate, error)
}

// EnrichmentQuery echoes the inputs an enrichment lookup was made with.
type EnrichmentQuery struct {
	Name      string
	BirthDate string // normalized "YYYY-MM-DD", may be empty
}

// ProviderMatch is one best-effort hit from a single enrichment provider.
type ProviderMatch struct {
	ID        string
	Name      string
	BirthDate string
	Score     float64
	Summary   string
	SourceURL string
}

// ProviderFindings groups the matches of one named provider.
type ProviderFindings struct {
	Provider string // e.g. "Qichacha"
	Kind     string // e.g. "business-registry", "legal-judgment"
	Matches  []ProviderMatch
}

// Citation is a supporting web reference attached to an enrichment record.
type Citation struct {
	Title string
	URL   string
}

// EnrichmentRecord aggregates external findings for one person.
type EnrichmentRecord struct {
	Query     EnrichmentQuery
	Providers []ProviderFindings
	Summary   string
	Citations []Citation
}

// Enricher performs the out-of-graph lookup staged by a pending enrichment.
// An empty birthDate is a valid query.
type Enricher interface {
	Lookup(ctx context.Context, name, birthDate string) (EnrichmentRecord, error)
}
