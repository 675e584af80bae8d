package resolver

import (
	"context"
	"regexp"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// entityIDRe recognizes id-shaped literals (letter prefix, at least one
// digit, no whitespace), e.g. "E1", "P-0042". Id-shaped input bypasses the
// fuzzy precheck and goes straight to exact resolution.
var entityIDRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*[0-9][A-Za-z0-9_-]*$`)

// turnState is the scratch space shared by the strategies of one turn.
// The parsed subject flows from the graph-parse strategy into the external
// search; notes collect demoted collaborator errors.
type turnState struct {
	text    string
	subject *ports.ParsedSubject
	notes   []string
}

// strategy is one step of the ordered resolution chain. run returns a nil
// outcome to fall through to the next strategy; a non-nil outcome
// short-circuits the chain. Errors are demoted by the orchestrator loop.
type strategy struct {
	name string
	run  func(ctx context.Context, ts *turnState) (*Outcome, error)
}

// buildStrategies assembles the fixed priority order of §"Resolution
// Orchestrator": fuzzy precheck, quoted resolve, whole-input resolve, graph
// parse-and-resolve, external search. The chain never reorders and never
// runs steps concurrently.
func (o *Orchestrator) buildStrategies() []strategy {
	return []strategy{
		{name: "fuzzy_precheck", run: o.fuzzyPrecheck},
		{name: "quoted_resolve", run: o.quotedResolve},
		{name: "whole_input_resolve", run: o.wholeInputResolve},
		{name: "graph_parse_resolve", run: o.graphParseResolve},
		{name: "external_search", run: o.externalSearch},
	}
}

// fuzzyPrecheck defers to the user when the backend itself reports several
// plausible matches: with two or more suggestions, any single-result
// heuristic downstream would be guessing. Id-shaped literals skip this.
func (o *Orchestrator) fuzzyPrecheck(ctx context.Context, ts *turnState) (*Outcome, error) {
	if entityIDRe.MatchString(ts.text) {
		return nil, nil
	}
	cands, err := o.dir.Suggest(ctx, ts.text, o.precheckLimit)
	if err != nil {
		return nil, err
	}
	if len(cands) >= 2 {
		return &Outcome{Kind: OutcomeAmbiguousCandidates, Candidates: cands}, nil
	}
	return nil, nil
}

// quotedResolve tries exact resolution on the first quoted run alone.
func (o *Orchestrator) quotedResolve(ctx context.Context, ts *turnState) (*Outcome, error) {
	quoted, ok := FirstQuotedRun(ts.text)
	if !ok {
		return nil, nil
	}
	return o.resolveExact(ctx, quoted)
}

// wholeInputResolve tries exact resolution on the entire trimmed text.
func (o *Orchestrator) wholeInputResolve(ctx context.Context, ts *turnState) (*Outcome, error) {
	return o.resolveExact(ctx, ts.text)
}

func (o *Orchestrator) resolveExact(ctx context.Context, query string) (*Outcome, error) {
	res, err := o.dir.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	if res.Status != ports.ResolveFound || res.Entity == nil {
		return nil, nil
	}
	return &Outcome{Kind: OutcomeExactMatch, EntityID: res.Entity.ID, Entity: res.Entity}, nil
}

// graphParseResolve sends the full text to the structured-extraction backend.
// The parsed subject is kept on the turn state even when no candidates come
// back, so the external search can use it as a hint.
func (o *Orchestrator) graphParseResolve(ctx context.Context, ts *turnState) (*Outcome, error) {
	res, err := o.parser.ParseAndResolve(ctx, ts.text)
	if err != nil {
		return nil, err
	}
	ts.subject = res.Subject
	if len(res.Candidates) == 0 {
		return nil, nil
	}
	cands := make([]ports.Candidate, len(res.Candidates))
	copy(cands, res.Candidates)
	for i := range cands {
		if cands[i].SourceKind == "" {
			cands[i].SourceKind = ports.SourceExternalGraph
		}
	}
	return &Outcome{Kind: OutcomeExternalCandidates, Candidates: cands}, nil
}

// externalSearch is the last resort: MCP providers queried with the raw text
// plus the parsed subject when the graph parse produced one.
func (o *Orchestrator) externalSearch(ctx context.Context, ts *turnState) (*Outcome, error) {
	cands, err := o.external.Search(ctx, ts.text, ts.subject)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	out := make([]ports.Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		if out[i].SourceKind == "" {
			out[i].SourceKind = ports.SourceExternalMCP
		}
	}
	return &Outcome{Kind: OutcomeExternalCandidates, Candidates: out}, nil
}
