package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// Options tunes the orchestrator. The zero value is usable.
type Options struct {
	// PrecheckLimit caps the fuzzy precheck suggestion count.
	PrecheckLimit int
}

const defaultPrecheckLimit = 5

// Orchestrator sequences the resolution strategies for one conversation.
// It is the only writer of the conversation state; strategies read but never
// mutate it. At most one turn is processed at a time per conversation
// instance (the caller disables input while a turn is in flight).
type Orchestrator struct {
	conv     *Conversation
	dir      ports.Directory
	parser   ports.GraphParser
	external ports.ExternalSearcher
	enricher ports.Enricher
	scanner  ports.NameScanner
	tracer   ports.Tracer
	logger   zerolog.Logger

	precheckLimit int
	strategies    []strategy
}

// NewOrchestrator wires an orchestrator with its collaborators. A nil tracer
// falls back to a no-op.
func NewOrchestrator(
	conv *Conversation,
	dir ports.Directory,
	parser ports.GraphParser,
	external ports.ExternalSearcher,
	enricher ports.Enricher,
	scanner ports.NameScanner,
	tracer ports.Tracer,
	logger zerolog.Logger,
	opts Options,
) *Orchestrator {
	if tracer == nil {
		tracer = NoopTracer{}
	}
	limit := opts.PrecheckLimit
	if limit <= 0 {
		limit = defaultPrecheckLimit
	}
	o := &Orchestrator{
		conv:          conv,
		dir:           dir,
		parser:        parser,
		external:      external,
		enricher:      enricher,
		scanner:       scanner,
		tracer:        tracer,
		logger:        logger,
		precheckLimit: limit,
	}
	o.strategies = o.buildStrategies()
	return o
}

// Conversation exposes the state owned by this orchestrator.
func (o *Orchestrator) Conversation() *Conversation { return o.conv }

// SubmitTurn processes one user submission and returns the turn's single
// structured outcome. Collaborator failures are demoted to informational
// notes, never surfaced as errors: the worst outcome is NoInternalMatch
// with the detail in Note.
func (o *Orchestrator) SubmitTurn(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	ctx, finish := o.tracer.StartSpan(ctx, "submit_turn", map[string]any{
		"conversation_id": o.conv.ID(),
	})
	defer finish(nil)

	o.conv.AppendTurn(RoleUser, text)
	out := o.resolveTurn(ctx, text)
	o.conv.AppendTurn(RoleAssistant, summarizeOutcome(out))
	return out
}

// PickCandidate is the re-entry point when the user resolves an ambiguous or
// external candidate list. The picked candidate is treated as exact-match
// input: internal picks are re-resolved by id, external picks are confirmed
// as-is. A person-typed confirmation triggers the supplementary scan.
func (o *Orchestrator) PickCandidate(ctx context.Context, c ports.Candidate) Outcome {
	ctx, finish := o.tracer.StartSpan(ctx, "pick_candidate", map[string]any{
		"conversation_id": o.conv.ID(),
		"candidate_id":    c.ID,
	})
	defer finish(nil)

	entity := &ports.EntityRef{ID: c.ID, Name: c.Name, Type: c.Type}
	out := Outcome{Kind: OutcomeExactMatch, EntityID: c.ID, Entity: entity}
	if c.SourceKind == ports.SourceInternal || c.SourceKind == "" {
		res, err := o.dir.Resolve(ctx, c.ID)
		if err != nil {
			o.logger.Warn().Err(err).Str("id", c.ID).Msg("resolve of picked candidate failed, keeping candidate fields")
		} else if res.Status == ports.ResolveFound && res.Entity != nil {
			out.Entity = res.Entity
			out.EntityID = res.Entity.ID
		}
	}
	o.afterConfirmedEntity(ctx, &out)
	o.conv.AppendTurn(RoleAssistant, summarizeOutcome(out))
	return out
}

// Reset starts a new session: history and pending enrichment are cleared
// together.
func (o *Orchestrator) Reset() { o.conv.Reset() }

// resolveTurn runs the pending-enrichment check and then the strategy chain
// strictly in order, short-circuiting on the first definitive result.
func (o *Orchestrator) resolveTurn(ctx context.Context, text string) Outcome {
	// A staged follow-up question owns the whole turn, whatever was typed.
	if pending := o.conv.ConsumePendingEnrichment(); pending != nil {
		return o.answerEnrichment(ctx, pending, text)
	}

	ts := &turnState{text: text}
	for _, st := range o.strategies {
		o.tracer.Event(ctx, "strategy", map[string]any{"name": st.name})
		out, err := st.run(ctx, ts)
		if err != nil {
			// Demote to "no result for this strategy" and fall through.
			o.logger.Warn().Err(err).Str("strategy", st.name).Msg("strategy failed, falling through")
			ts.notes = append(ts.notes, fmt.Sprintf("%s: %v", st.name, err))
			continue
		}
		if out != nil {
			out.Note = joinNotes(ts.notes, out.Note)
			o.afterConfirmedEntity(ctx, out)
			return *out
		}
	}
	return Outcome{Kind: OutcomeNoInternalMatch, Note: joinNotes(ts.notes, "")}
}

// answerEnrichment interprets the turn as the answer to the outstanding
// question. The pending enrichment has already been consumed: whether the
// lookup succeeds, fails, or the user declined, the question is never
// re-asked.
func (o *Orchestrator) answerEnrichment(ctx context.Context, pending *PendingEnrichment, text string) Outcome {
	out := Outcome{Kind: OutcomeEnrichmentStaged}
	var birthDate string
	if IsSkipAnswer(text) {
		out.Note = "birth date declined"
	} else {
		birthDate = ExtractBirthDate(text)
	}

	o.tracer.Event(ctx, "enrichment_lookup", map[string]any{
		"subject":    pending.SubjectName,
		"birth_date": birthDate,
	})
	rec, err := o.enricher.Lookup(ctx, pending.SubjectName, birthDate)
	if err != nil {
		o.logger.Warn().Err(err).Str("subject", pending.SubjectName).Msg("enrichment lookup failed")
		out.Note = joinNotes([]string{out.Note}, fmt.Sprintf("enrichment lookup: %v", err))
		return out
	}
	out.Enrichment = &rec
	return out
}

// afterConfirmedEntity runs the supplementary step for person-type
// confirmations: a baseline name scan plus staging of the birth-date
// follow-up. Company-type and ambiguous results never reach here.
func (o *Orchestrator) afterConfirmedEntity(ctx context.Context, out *Outcome) {
	if out.Kind != OutcomeExactMatch || out.Entity == nil {
		return
	}
	if out.Entity.Type != ports.EntityPerson {
		return
	}
	if o.scanner != nil {
		report, err := o.scanner.Scan(ctx, out.Entity.Name)
		if err != nil {
			o.logger.Warn().Err(err).Str("name", out.Entity.Name).Msg("baseline name scan failed")
			out.Note = joinNotes([]string{out.Note}, fmt.Sprintf("name scan: %v", err))
		} else {
			out.Scan = &report
		}
	}
	o.conv.SetPendingEnrichment(&PendingEnrichment{
		SubjectName: out.Entity.Name,
		RequestedAt: time.Now(),
	})
	o.tracer.Event(ctx, "enrichment_staged", map[string]any{"subject": out.Entity.Name})
}

func summarizeOutcome(out Outcome) string {
	switch out.Kind {
	case OutcomeExactMatch:
		return fmt.Sprintf("resolved %s", out.EntityID)
	case OutcomeAmbiguousCandidates:
		return fmt.Sprintf("%d candidates need a selection", len(out.Candidates))
	case OutcomeExternalCandidates:
		return fmt.Sprintf("%d external candidates", len(out.Candidates))
	case OutcomeEnrichmentStaged:
		return "external enrichment dispatched"
	default:
		return "no match found"
	}
}

func joinNotes(notes []string, extra string) string {
	parts := make([]string, 0, len(notes)+1)
	for _, n := range notes {
		if n != "" {
			parts = append(parts, n)
		}
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, "; ")
}

// NoopTracer discards all spans and events.
type NoopTracer struct{}

func (NoopTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(error) {}
}
func (NoopTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

var _ ports.Tracer = NoopTracer{}
