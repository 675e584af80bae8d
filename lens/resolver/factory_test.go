package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duegraph/entitylens/lens/config"
	"github.com/duegraph/entitylens/lens/resolver/adapters"
	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

func memoryFactoryConfig() *config.Config {
	return &config.Config{
		Resolver:  config.ResolverConfig{PrecheckLimit: 5},
		Suggest:   config.SuggestConfig{Debounce: 20 * time.Millisecond, Limit: 8},
		Directory: config.DirectoryConfig{Driver: "memory"},
	}
}

func TestFactory_OrchestratorAndFetcherShareOneDirectory(t *testing.T) {
	f := NewFactory(memoryFactoryConfig(), nil, zerolog.Nop())

	orch, err := f.CreateOrchestrator()
	require.NoError(t, err)
	fetcher, err := f.CreateSuggestFetcher(context.Background(), func(string, []ports.Candidate) {})
	require.NoError(t, err)
	t.Cleanup(fetcher.Close)

	assert.Same(t, orch.dir, fetcher.dir)
}

func TestFactory_UpsertsVisibleToBothDomains(t *testing.T) {
	f := NewFactory(memoryFactoryConfig(), nil, zerolog.Nop())

	orch, err := f.CreateOrchestrator()
	require.NoError(t, err)
	fetcher, err := f.CreateSuggestFetcher(context.Background(), func(string, []ports.Candidate) {})
	require.NoError(t, err)
	t.Cleanup(fetcher.Close)

	mem, ok := orch.dir.(*adapters.MemoryDirectory)
	require.True(t, ok)
	mem.Upsert(ports.EntityRef{ID: "C1", Name: "Acme Corp", Type: ports.EntityCompany})

	cands, err := fetcher.dir.Suggest(context.Background(), "Acme", 5)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "C1", cands[0].ID)
}

func TestFactory_UnknownDriverRejected(t *testing.T) {
	cfg := memoryFactoryConfig()
	cfg.Directory.Driver = "postgres"
	f := NewFactory(cfg, nil, zerolog.Nop())

	_, err := f.CreateOrchestrator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown directory driver")
}
