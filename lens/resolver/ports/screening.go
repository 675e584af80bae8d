package resolverports

import "context"

// WatchlistHit is one match against the local sanctions/PEP watchlist.
// MatchBy records provenance: "exact", "fuzzy" or "alias".
type WatchlistHit struct {
	Name      string
	Type      string
	List      string
	RiskLevel string
	Notes     string
	MatchBy   string
	Score     float64
}

// ScanReport is the combined result of a baseline name scan.
type ScanReport struct {
	Input         string
	FuzzyMatches  []Candidate
	WatchlistHits []WatchlistHit
}

// NameScanner runs the baseline scan performed after a person resolves:
// internal fuzzy duplicates plus watchlist screening.
type NameScanner interface {
	Scan(ctx context.Context, name string) (ScanReport, error)
}
