package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// DefaultSuggestDebounce is the quiet period before an as-you-type lookup
// fires.
const DefaultSuggestDebounce = 200 * time.Millisecond

// SuggestFetcher coalesces as-you-type suggestion lookups. Rapid keystrokes
// within the debounce window replace the scheduled lookup; in-flight lookups
// carry a generation number and stale responses are discarded when a newer
// query has been issued since. The fetcher is fully independent of the turn
// pipeline and never touches conversation state.
type SuggestFetcher struct {
	mu           sync.Mutex
	dir          ports.Directory
	apply        func(query string, candidates []ports.Candidate)
	delay        time.Duration
	limit        int
	logger       zerolog.Logger
	baseCtx      context.Context
	timer        *time.Timer
	sched        uint64
	composing    bool
	pendingQuery string
	lastIssued   string
	gen          uint64
}

// NewSuggestFetcher creates a fetcher that delivers results through apply.
// apply is invoked with the issuing query and its candidates, or with an
// empty query and nil candidates when suggestions are cleared; it must not
// call back into the fetcher.
func NewSuggestFetcher(
	ctx context.Context,
	dir ports.Directory,
	delay time.Duration,
	limit int,
	apply func(query string, candidates []ports.Candidate),
	logger zerolog.Logger,
) *SuggestFetcher {
	if delay <= 0 {
		delay = DefaultSuggestDebounce
	}
	if limit <= 0 {
		limit = 8
	}
	return &SuggestFetcher{
		dir:     dir,
		apply:   apply,
		delay:   delay,
		limit:   limit,
		logger:  logger,
		baseCtx: ctx,
	}
}

// OnQueryChanged registers one keystroke's worth of input. Empty input
// cancels any scheduled lookup, supersedes in-flight ones and clears shown
// suggestions synchronously, with no debounce.
func (f *SuggestFetcher) OnQueryChanged(text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		f.mu.Lock()
		f.stopTimerLocked()
		f.pendingQuery = ""
		f.lastIssued = ""
		f.gen++ // in-flight responses are now stale
		f.apply("", nil)
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.composing {
		// IME session open: hold the query until composition ends.
		f.pendingQuery = query
		return
	}
	f.scheduleLocked(query)
}

// SetComposing gates scheduling while an IME/composition session is open.
// Ending composition flushes one lookup immediately for the held query.
func (f *SuggestFetcher) SetComposing(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.composing = active
	if active {
		f.stopTimerLocked()
		return
	}
	if f.pendingQuery != "" {
		query := f.pendingQuery
		f.pendingQuery = ""
		f.issueLocked(query)
	}
}

// Close cancels any scheduled lookup. In-flight lookups complete but their
// results are discarded.
func (f *SuggestFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimerLocked()
	f.gen++
}

func (f *SuggestFetcher) scheduleLocked(query string) {
	f.stopTimerLocked()
	token := f.sched
	f.timer = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if token != f.sched {
			// The timer fired but was stopped before it got the lock.
			return
		}
		f.issueLocked(query)
	})
}

// stopTimerLocked cancels the scheduled lookup. Bumping sched also
// invalidates a timer that already fired and is waiting on the mutex, which
// Stop alone cannot reach.
func (f *SuggestFetcher) stopTimerLocked() {
	f.sched++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// issueLocked starts the network lookup for query unless the identical query
// was already issued. Callers hold f.mu.
func (f *SuggestFetcher) issueLocked(query string) {
	if query == f.lastIssued {
		return
	}
	f.lastIssued = query
	f.gen++
	gen := f.gen

	go func() {
		candidates, err := f.dir.Suggest(f.baseCtx, query, f.limit)

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			// Superseded while in flight: a newer query owns the display.
			f.logger.Debug().Str("query", query).Msg("discarding stale suggestion response")
			return
		}
		if err != nil {
			f.logger.Warn().Err(err).Str("query", query).Msg("suggestion lookup failed")
			return
		}
		f.apply(query, candidates)
	}()
}
