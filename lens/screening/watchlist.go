// Package screening implements the baseline name scan run after a person
// resolves: internal fuzzy duplicates plus watchlist screening against a
// local sanctions/PEP list.
package screening

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// WatchlistEntry is one record in the local watchlist file.
type WatchlistEntry struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases"`
	Type      string   `json:"type"`
	List      string   `json:"list"`
	RiskLevel string   `json:"risk_level"`
	Notes     string   `json:"notes"`
}

// Watchlist holds the in-memory watchlist, reloading from disk when the
// backing file changes. A missing or malformed file yields an empty list.
type Watchlist struct {
	mu      sync.RWMutex
	path    string
	entries []WatchlistEntry
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	done    chan struct{}
}

// LoadWatchlist reads the watchlist from path and starts watching the file
// for changes. Call Close to stop the watcher.
func LoadWatchlist(path string, logger zerolog.Logger) (*Watchlist, error) {
	w := &Watchlist{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}
	w.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watchlist watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save and
	// a per-file watch would be lost after the first rewrite.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	w.watcher = watcher
	go w.watchLoop()
	return w, nil
}

// Close stops the file watcher.
func (w *Watchlist) Close() error {
	close(w.done)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watchlist) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.logger.Debug().Str("path", w.path).Msg("watchlist changed, reloading")
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watchlist watcher error")
		}
	}
}

func (w *Watchlist) reload() {
	entries := readWatchlistFile(w.path, w.logger)
	w.mu.Lock()
	w.entries = entries
	w.mu.Unlock()
}

func readWatchlistFile(path string, logger zerolog.Logger) []WatchlistEntry {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("failed to read watchlist")
		}
		return nil
	}
	var entries []WatchlistEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("malformed watchlist, ignoring")
		return nil
	}
	return entries
}

// Len reports the number of loaded entries.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}

// Screen matches name against every entry's name and aliases. Exact
// normalized matches score 3, containment either way scores 2. MatchBy is
// "exact", "fuzzy" or "alias" depending on which variant matched.
func (w *Watchlist) Screen(name string) []ports.WatchlistHit {
	q := strings.TrimSpace(name)
	if q == "" {
		return nil
	}
	normQ := normalizeName(q)

	w.mu.RLock()
	entries := w.entries
	w.mu.RUnlock()

	var hits []ports.WatchlistHit
	for _, item := range entries {
		for _, v := range entryVariants(item) {
			normWL := normalizeName(v.value)
			if normWL == "" {
				continue
			}

			score := 0.0
			matchBy := "exact"
			if v.alias {
				matchBy = "alias"
			}
			switch {
			case normQ == normWL:
				score = 3
			case strings.Contains(normWL, normQ) || strings.Contains(normQ, normWL):
				score = 2
				if matchBy == "exact" {
					matchBy = "fuzzy"
				}
			}
			if score == 0 {
				continue
			}
			hits = append(hits, ports.WatchlistHit{
				Name:      v.value,
				Type:      item.Type,
				List:      item.List,
				RiskLevel: item.RiskLevel,
				Notes:     item.Notes,
				MatchBy:   matchBy,
				Score:     score,
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Name < hits[j].Name
	})
	return hits
}

type variant struct {
	value string
	alias bool
}

func entryVariants(item WatchlistEntry) []variant {
	var out []variant
	main := strings.TrimSpace(item.Name)
	if main != "" {
		out = append(out, variant{value: main})
	}
	for _, a := range item.Aliases {
		v := strings.TrimSpace(a)
		if v != "" && v != main {
			out = append(out, variant{value: v, alias: true})
		}
	}
	return out
}

// normalizeName strips all whitespace and lowercases so "Zhang San" and
// "zhangsan" compare equal.
func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
