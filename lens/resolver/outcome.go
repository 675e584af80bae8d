package resolver

import ports "github.com/duegraph/entitylens/lens/resolver/ports"

// OutcomeKind tags the variant of a turn's resolution outcome.
type OutcomeKind string

const (
	// OutcomeExactMatch identifies a single confirmed entity.
	OutcomeExactMatch OutcomeKind = "exact_match"
	// OutcomeAmbiguousCandidates requires an explicit user selection before
	// any further automatic action.
	OutcomeAmbiguousCandidates OutcomeKind = "ambiguous_candidates"
	// OutcomeNoInternalMatch means every strategy was exhausted.
	OutcomeNoInternalMatch OutcomeKind = "no_internal_match"
	// OutcomeExternalCandidates carries ranked candidates from the graph
	// parser or the external/MCP search; SourceKind on the candidates tells
	// the flavors apart.
	OutcomeExternalCandidates OutcomeKind = "external_candidates"
	// OutcomeEnrichmentStaged covers the enrichment follow-up turn: the
	// staged question was answered (or skipped) and the lookup dispatched.
	OutcomeEnrichmentStaged OutcomeKind = "enrichment_staged"
)

// Outcome is the single structured result of one submitted turn. It is
// computed once and not retained; only its side effects persist.
type Outcome struct {
	Kind       OutcomeKind
	EntityID   string
	Entity     *ports.EntityRef
	Candidates []ports.Candidate
	Enrichment *ports.EnrichmentRecord
	Scan       *ports.ScanReport
	// Note carries informational detail for the presentation layer, e.g.
	// demoted collaborator errors. Never a fatal signal.
	Note string
}
