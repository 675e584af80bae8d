package screening

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"gonum.org/v1/gonum/floats"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

const defaultFuzzyLimit = 5

// Scanner combines directory fuzzy search with watchlist screening. Both
// lookups run concurrently; a directory failure degrades to watchlist-only
// results rather than failing the scan.
type Scanner struct {
	dir        ports.Directory
	watchlist  *Watchlist
	fuzzyLimit int
	logger     zerolog.Logger
}

// NewScanner creates a scanner over the directory and watchlist. A nil
// watchlist disables watchlist screening; a non-positive fuzzyLimit falls
// back to the default.
func NewScanner(dir ports.Directory, watchlist *Watchlist, fuzzyLimit int, logger zerolog.Logger) *Scanner {
	if fuzzyLimit <= 0 {
		fuzzyLimit = defaultFuzzyLimit
	}
	return &Scanner{dir: dir, watchlist: watchlist, fuzzyLimit: fuzzyLimit, logger: logger}
}

// Scan runs the baseline scan for name: internal fuzzy duplicates plus
// watchlist hits. Fuzzy match scores are normalized to [0, 1].
func (s *Scanner) Scan(ctx context.Context, name string) (ports.ScanReport, error) {
	q := strings.TrimSpace(name)
	report := ports.ScanReport{Input: q}
	if q == "" {
		return report, nil
	}

	var (
		fuzzy []ports.Candidate
		hits  []ports.WatchlistHit
		wg    conc.WaitGroup
	)
	wg.Go(func() {
		if s.dir == nil {
			return
		}
		matches, err := s.dir.Suggest(ctx, q, s.fuzzyLimit)
		if err != nil {
			s.logger.Warn().Err(err).Str("name", q).Msg("fuzzy duplicate search failed, continuing with watchlist only")
			return
		}
		fuzzy = matches
	})
	wg.Go(func() {
		if s.watchlist == nil {
			return
		}
		hits = s.watchlist.Screen(q)
	})
	wg.Wait()

	annotateMatchBy(fuzzy)
	normalizeScores(fuzzy)
	report.FuzzyMatches = fuzzy
	report.WatchlistHits = hits
	return report, nil
}

// annotateMatchBy maps the directory's raw startswith/contains scores onto
// provenance labels before the scores are normalized away.
func annotateMatchBy(matches []ports.Candidate) {
	for i := range matches {
		var label string
		switch {
		case matches[i].Score >= 2:
			label = "startswith"
		case matches[i].Score >= 1:
			label = "contains"
		default:
			label = "fuzzy"
		}
		matches[i].MatchedFields = append(matches[i].MatchedFields, label)
	}
}

// normalizeScores rescales candidate scores into [0, 1] by the maximum.
func normalizeScores(matches []ports.Candidate) {
	if len(matches) == 0 {
		return
	}
	scores := make([]float64, len(matches))
	for i, m := range matches {
		scores[i] = m.Score
	}
	if max := floats.Max(scores); max > 0 {
		floats.Scale(1/max, scores)
	}
	for i := range matches {
		matches[i].Score = scores[i]
	}
}

var _ ports.NameScanner = (*Scanner)(nil)
