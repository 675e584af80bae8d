package resolverports

import "context"

// Directory is the internal entity store queried by the resolution pipeline.
type Directory interface {
	// Resolve maps a trimmed identifier (id or name) to a single entity,
	// reporting ambiguity instead of guessing between several matches.
	Resolve(ctx context.Context, query string) (ResolveResult, error)
	// Suggest returns up to limit lightweight candidates for a partial query,
	// ordered best-first. An empty result is not an error.
	Suggest(ctx context.Context, query string, limit int) ([]Candidate, error)
}
