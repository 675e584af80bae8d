package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

func seededDirectory() *MemoryDirectory {
	dir := NewMemoryDirectory()
	dir.Upsert(ports.EntityRef{ID: "P1", Name: "张三", Type: ports.EntityPerson})
	dir.Upsert(ports.EntityRef{ID: "P2", Name: "张三丰", Type: ports.EntityPerson})
	dir.Upsert(ports.EntityRef{ID: "C1", Name: "Acme Corp", Type: ports.EntityCompany})
	dir.Upsert(ports.EntityRef{ID: "C2", Name: "Acme Holdings", Type: ports.EntityCompany})
	dir.Upsert(ports.EntityRef{ID: "P3", Name: "李四", Type: ports.EntityPerson})
	return dir
}

func TestMemoryDirectory_ResolveByID(t *testing.T) {
	dir := seededDirectory()

	res, err := dir.Resolve(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, ports.ResolveFound, res.Status)
	assert.Equal(t, "id", res.By)
	require.NotNil(t, res.Entity)
	assert.Equal(t, "张三", res.Entity.Name)
}

func TestMemoryDirectory_ResolveByExactNameCaseInsensitive(t *testing.T) {
	dir := seededDirectory()

	res, err := dir.Resolve(context.Background(), "acme corp")
	require.NoError(t, err)
	assert.Equal(t, ports.ResolveFound, res.Status)
	assert.Equal(t, "name", res.By)
	assert.Equal(t, "C1", res.Entity.ID)
}

func TestMemoryDirectory_ResolveAmbiguousExactName(t *testing.T) {
	dir := seededDirectory()
	dir.Upsert(ports.EntityRef{ID: "P9", Name: "李四", Type: ports.EntityPerson})

	res, err := dir.Resolve(context.Background(), "李四")
	require.NoError(t, err)
	assert.Equal(t, ports.ResolveAmbiguous, res.Status)
	assert.Equal(t, "name", res.By)
	assert.Len(t, res.Matches, 2)
}

func TestMemoryDirectory_ResolveLoneFuzzyMatchAccepted(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.Upsert(ports.EntityRef{ID: "C1", Name: "Acme Corp", Type: ports.EntityCompany})

	res, err := dir.Resolve(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, ports.ResolveFound, res.Status)
	assert.Equal(t, "fuzzy", res.By)
	assert.Equal(t, "C1", res.Entity.ID)
}

func TestMemoryDirectory_ResolveMultipleFuzzyMatchesAmbiguous(t *testing.T) {
	dir := seededDirectory()

	res, err := dir.Resolve(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, ports.ResolveAmbiguous, res.Status)
	assert.Equal(t, "fuzzy", res.By)
	assert.Len(t, res.Matches, 2)
}

func TestMemoryDirectory_ResolveNotFound(t *testing.T) {
	dir := seededDirectory()

	for _, q := range []string{"", "   ", "nonexistent"} {
		res, err := dir.Resolve(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, ports.ResolveNotFound, res.Status, q)
	}
}

func TestMemoryDirectory_SuggestPrefixOutscoresContainment(t *testing.T) {
	dir := seededDirectory()

	cands, err := dir.Suggest(context.Background(), "张三", 10)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	// Prefix matches first, shorter name before longer at equal score.
	assert.Equal(t, "P1", cands[0].ID)
	assert.Equal(t, float64(2), cands[0].Score)
	assert.Equal(t, "P2", cands[1].ID)
}

func TestMemoryDirectory_SuggestContainmentMatch(t *testing.T) {
	dir := seededDirectory()

	cands, err := dir.Suggest(context.Background(), "Holdings", 10)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "C2", cands[0].ID)
	assert.Equal(t, float64(1), cands[0].Score)
	assert.Contains(t, cands[0].MatchedFields, "name")
}

func TestMemoryDirectory_SuggestMatchesIDs(t *testing.T) {
	dir := seededDirectory()

	cands, err := dir.Suggest(context.Background(), "C1", 10)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "C1", cands[0].ID)
	assert.Contains(t, cands[0].MatchedFields, "id")
}

func TestMemoryDirectory_SuggestHonorsLimit(t *testing.T) {
	dir := seededDirectory()

	cands, err := dir.Suggest(context.Background(), "Acme", 1)
	require.NoError(t, err)
	assert.Len(t, cands, 1)

	cands, err = dir.Suggest(context.Background(), "Acme", 0)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestMemoryDirectory_UpsertNeverClobbersWithEmpty(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.Upsert(ports.EntityRef{ID: "P1", Name: "张三", Type: ports.EntityPerson, Description: "existing customer"})
	dir.Upsert(ports.EntityRef{ID: "P1", Description: "updated description"})

	res, err := dir.Resolve(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "张三", res.Entity.Name)
	assert.Equal(t, ports.EntityPerson, res.Entity.Type)
	assert.Equal(t, "updated description", res.Entity.Description)
}

func TestMemoryDirectory_UpsertRenameReindexes(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.Upsert(ports.EntityRef{ID: "C1", Name: "Oldname Ltd"})
	dir.Upsert(ports.EntityRef{ID: "C1", Name: "Newname Ltd"})

	cands, err := dir.Suggest(context.Background(), "Oldname", 10)
	require.NoError(t, err)
	assert.Empty(t, cands)

	cands, err = dir.Suggest(context.Background(), "Newname", 10)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "C1", cands[0].ID)
}
