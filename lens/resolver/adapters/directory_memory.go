package adapters

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	radix "github.com/armon/go-radix"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// MemoryDirectory is an in-process Directory backed by a radix prefix tree
// for starts-with matching and roaring trigram posting lists for containment
// matching. It mirrors the libsql directory's semantics and serves as the
// default driver and the test double of choice.
type MemoryDirectory struct {
	mu       sync.RWMutex
	byID     map[string]int
	entities []ports.EntityRef
	prefixes *radix.Tree               // lowercased name/id → []uint32 ordinals
	trigrams map[string]*roaring.Bitmap // name/id trigram → ordinals
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:     make(map[string]int),
		prefixes: radix.New(),
		trigrams: make(map[string]*roaring.Bitmap),
	}
}

// Upsert inserts or updates an entity. Existing non-empty fields are kept
// when the update carries empty ones, matching the backend's non-clobbering
// merge semantics.
func (d *MemoryDirectory) Upsert(e ports.EntityRef) {
	if strings.TrimSpace(e.ID) == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	ord, exists := d.byID[e.ID]
	if !exists {
		ord = len(d.entities)
		d.entities = append(d.entities, ports.EntityRef{ID: e.ID})
		d.byID[e.ID] = ord
		d.indexKeyLocked(e.ID, uint32(ord))
	}
	cur := &d.entities[ord]
	if e.Name != "" {
		if cur.Name != "" && !strings.EqualFold(cur.Name, e.Name) {
			d.unindexKeyLocked(cur.Name, uint32(ord))
		}
		if cur.Name == "" || !strings.EqualFold(cur.Name, e.Name) {
			d.indexKeyLocked(e.Name, uint32(ord))
		}
		cur.Name = e.Name
	}
	if e.Type != "" {
		cur.Type = e.Type
	}
	if e.Description != "" {
		cur.Description = e.Description
	}
}

func (d *MemoryDirectory) indexKeyLocked(key string, ord uint32) {
	lower := strings.ToLower(key)
	var ords []uint32
	if v, ok := d.prefixes.Get(lower); ok {
		ords = v.([]uint32)
	}
	d.prefixes.Insert(lower, append(ords, ord))
	for _, g := range trigramsOf(lower) {
		bm, ok := d.trigrams[g]
		if !ok {
			bm = roaring.New()
			d.trigrams[g] = bm
		}
		bm.Add(ord)
	}
}

func (d *MemoryDirectory) unindexKeyLocked(key string, ord uint32) {
	lower := strings.ToLower(key)
	if v, ok := d.prefixes.Get(lower); ok {
		ords := v.([]uint32)
		kept := ords[:0]
		for _, o := range ords {
			if o != ord {
				kept = append(kept, o)
			}
		}
		if len(kept) == 0 {
			d.prefixes.Delete(lower)
		} else {
			d.prefixes.Insert(lower, kept)
		}
	}
	for _, g := range trigramsOf(lower) {
		if bm, ok := d.trigrams[g]; ok {
			bm.Remove(ord)
		}
	}
}

// trigramsOf returns the distinct rune trigrams of s.
func trigramsOf(s string) []string {
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}
	seen := make(map[string]struct{}, len(runes))
	out := make([]string, 0, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		g := string(runes[i : i+3])
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Resolve maps an identifier to a single entity: by id first, then by exact
// name (case-insensitive), then by fuzzy search accepting only a lone match.
// Several equally plausible matches are reported as ambiguous.
func (d *MemoryDirectory) Resolve(ctx context.Context, query string) (ports.ResolveResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ports.ResolveResult{Status: ports.ResolveNotFound}, nil
	}

	d.mu.RLock()
	if ord, ok := d.byID[query]; ok {
		e := d.entities[ord]
		d.mu.RUnlock()
		return ports.ResolveResult{Status: ports.ResolveFound, Entity: &e, By: "id"}, nil
	}
	var nameMatches []ports.EntityRef
	for _, e := range d.entities {
		if strings.EqualFold(e.Name, query) {
			nameMatches = append(nameMatches, e)
		}
	}
	d.mu.RUnlock()

	switch {
	case len(nameMatches) == 1:
		e := nameMatches[0]
		return ports.ResolveResult{Status: ports.ResolveFound, Entity: &e, By: "name"}, nil
	case len(nameMatches) > 1:
		return ports.ResolveResult{
			Status:  ports.ResolveAmbiguous,
			By:      "name",
			Matches: toCandidates(nameMatches, 3, "name"),
		}, nil
	}

	fuzzy, err := d.Suggest(ctx, query, 5)
	if err != nil {
		return ports.ResolveResult{}, err
	}
	switch {
	case len(fuzzy) == 1:
		e := d.lookup(fuzzy[0].ID)
		return ports.ResolveResult{Status: ports.ResolveFound, Entity: &e, By: "fuzzy"}, nil
	case len(fuzzy) > 1:
		return ports.ResolveResult{Status: ports.ResolveAmbiguous, By: "fuzzy", Matches: fuzzy}, nil
	}
	return ports.ResolveResult{Status: ports.ResolveNotFound}, nil
}

func (d *MemoryDirectory) lookup(id string) ports.EntityRef {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ord, ok := d.byID[id]; ok {
		return d.entities[ord]
	}
	return ports.EntityRef{ID: id}
}

// Suggest returns fuzzy candidates for a partial query: starts-with matches
// score 2, containment matches score 1, ordered by score, name length, name,
// id.
func (d *MemoryDirectory) Suggest(ctx context.Context, query string, limit int) ([]ports.Candidate, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	scores := make(map[uint32]float64)
	d.prefixes.WalkPrefix(query, func(_ string, v interface{}) bool {
		for _, ord := range v.([]uint32) {
			scores[ord] = 2
		}
		return false
	})
	for _, ord := range d.containsLocked(query) {
		if _, ok := scores[ord]; !ok {
			scores[ord] = 1
		}
	}

	cands := make([]ports.Candidate, 0, len(scores))
	for ord, score := range scores {
		e := d.entities[ord]
		cands = append(cands, ports.Candidate{
			ID:            e.ID,
			Name:          e.Name,
			Type:          e.Type,
			Score:         score,
			MatchedFields: matchedFields(e, query),
			SourceKind:    ports.SourceInternal,
		})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		if len(cands[i].Name) != len(cands[j].Name) {
			return len(cands[i].Name) < len(cands[j].Name)
		}
		ni, nj := strings.ToLower(cands[i].Name), strings.ToLower(cands[j].Name)
		if ni != nj {
			return ni < nj
		}
		return cands[i].ID < cands[j].ID
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands, nil
}

// containsLocked finds ordinals whose name or id contains query. Queries of
// three or more runes intersect trigram posting lists before verifying; a
// shorter query falls back to a linear scan.
func (d *MemoryDirectory) containsLocked(query string) []uint32 {
	verify := func(ord uint32) bool {
		e := d.entities[ord]
		return strings.Contains(strings.ToLower(e.Name), query) ||
			strings.Contains(strings.ToLower(e.ID), query)
	}

	grams := trigramsOf(query)
	if len(grams) == 0 {
		var out []uint32
		for ord := range d.entities {
			if verify(uint32(ord)) {
				out = append(out, uint32(ord))
			}
		}
		return out
	}

	lists := make([]*roaring.Bitmap, 0, len(grams))
	for _, g := range grams {
		bm, ok := d.trigrams[g]
		if !ok {
			return nil
		}
		lists = append(lists, bm)
	}
	var out []uint32
	it := roaring.FastAnd(lists...).Iterator()
	for it.HasNext() {
		ord := it.Next()
		if verify(ord) {
			out = append(out, ord)
		}
	}
	return out
}

func matchedFields(e ports.EntityRef, query string) []string {
	var fields []string
	if strings.Contains(strings.ToLower(e.Name), query) {
		fields = append(fields, "name")
	}
	if strings.Contains(strings.ToLower(e.ID), query) {
		fields = append(fields, "id")
	}
	return fields
}

func toCandidates(entities []ports.EntityRef, score float64, field string) []ports.Candidate {
	out := make([]ports.Candidate, len(entities))
	for i, e := range entities {
		out[i] = ports.Candidate{
			ID:            e.ID,
			Name:          e.Name,
			Type:          e.Type,
			Score:         score,
			MatchedFields: []string{field},
			SourceKind:    ports.SourceInternal,
		}
	}
	return out
}

var _ ports.Directory = (*MemoryDirectory)(nil)
