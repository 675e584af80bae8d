package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

func jsonServer(t *testing.T, path, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, path, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPGraphParser_ParseAndResolve(t *testing.T) {
	srv := jsonServer(t, "/graphrag/resolve", `{
		"subject": {"name": "张三", "birth_date": "1985-03-09", "address_keywords": ["浦东"]},
		"candidates": [{"id": "G1", "name": "张三", "type": "Person", "score": 0.92}]
	}`, http.StatusOK)

	parser := NewHTTPGraphParser(srv.URL, time.Second, zerolog.Nop())
	res, err := parser.ParseAndResolve(context.Background(), "出生于1985年的张三")
	require.NoError(t, err)

	require.NotNil(t, res.Subject)
	assert.Equal(t, "张三", res.Subject.Name)
	assert.Equal(t, []string{"浦东"}, res.Subject.AddressKeywords)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, ports.EntityPerson, res.Candidates[0].Type)
	assert.Equal(t, ports.SourceExternalGraph, res.Candidates[0].SourceKind)
}

func TestHTTPGraphParser_RejectsMalformedPayload(t *testing.T) {
	// Missing the required candidates field.
	srv := jsonServer(t, "/graphrag/resolve", `{"subject": null}`, http.StatusOK)

	parser := NewHTTPGraphParser(srv.URL, time.Second, zerolog.Nop())
	_, err := parser.ParseAndResolve(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestHTTPGraphParser_NonOKStatus(t *testing.T) {
	srv := jsonServer(t, "/graphrag/resolve", `upstream exploded`, http.StatusBadGateway)

	parser := NewHTTPGraphParser(srv.URL, time.Second, zerolog.Nop())
	_, err := parser.ParseAndResolve(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestHTTPExternalSearcher_Search(t *testing.T) {
	srv := jsonServer(t, "/external/search", `{
		"results": [
			{"source": "registry", "name": "张三", "type": "Person", "snippet": "legal rep", "url": "https://example.com/1", "match_score": 0.8},
			{"name": "Zhang San", "match_score": 0.5}
		]
	}`, http.StatusOK)

	searcher := NewHTTPExternalSearcher(srv.URL, time.Second, zerolog.Nop())
	cands, err := searcher.Search(context.Background(), "张三", &ports.ParsedSubject{Name: "张三"})
	require.NoError(t, err)

	require.Len(t, cands, 2)
	assert.Equal(t, ports.SourceExternalMCP, cands[0].SourceKind)
	assert.Equal(t, []string{"registry"}, cands[0].MatchedFields)
	assert.Equal(t, "https://example.com/1", cands[0].SourceURL)
	assert.Empty(t, cands[1].MatchedFields)
	assert.Equal(t, ports.EntityUnknown, cands[1].Type)
}

func TestEnrichmentRegistry_AggregatesProviders(t *testing.T) {
	ok := ProviderFunc{
		ProviderName: "Qichacha",
		ProviderKind: "business-registry",
		Fn: func(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error) {
			return []ports.ProviderMatch{
				{Name: name, Score: 0.9, SourceURL: "https://example.com/biz"},
			}, nil
		},
	}
	failing := ProviderFunc{
		ProviderName: "CourtRecords",
		ProviderKind: "legal-judgment",
		Fn: func(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error) {
			return nil, errors.New("upstream timeout")
		},
	}

	reg := NewEnrichmentRegistry(zerolog.Nop(), ok, failing)
	rec, err := reg.Lookup(context.Background(), "张三", "1985/03/09")
	require.NoError(t, err)

	assert.Equal(t, "1985-03-09", rec.Query.BirthDate, "birth date normalized before fan-out")
	require.Len(t, rec.Providers, 1, "failing provider skipped, not fatal")
	assert.Equal(t, "Qichacha", rec.Providers[0].Provider)
	require.Len(t, rec.Citations, 1)
	assert.Equal(t, "https://example.com/biz", rec.Citations[0].URL)
	assert.Contains(t, rec.Summary, "张三")
	assert.Contains(t, rec.Summary, "Qichacha")
}

func TestEnrichmentRegistry_RequiresName(t *testing.T) {
	reg := NewEnrichmentRegistry(zerolog.Nop())
	_, err := reg.Lookup(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestEnrichmentRegistry_EmptyBirthDateIsValid(t *testing.T) {
	var gotBirthDate string
	p := ProviderFunc{
		ProviderName: "Qichacha",
		ProviderKind: "business-registry",
		Fn: func(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error) {
			gotBirthDate = birthDate
			return nil, nil
		},
	}

	reg := NewEnrichmentRegistry(zerolog.Nop(), p)
	rec, err := reg.Lookup(context.Background(), "张三", "")
	require.NoError(t, err)
	assert.Empty(t, gotBirthDate)
	assert.Contains(t, rec.Summary, "aggregated 0")
}

func TestHTTPEnrichmentProvider_Search(t *testing.T) {
	srv := jsonServer(t, "/enrich/business", `{
		"matches": [{"id": "biz-1", "name": "张三", "birth_date": "1985-03-09", "score": 0.7, "summary": "director of two companies", "url": "https://example.com/biz-1"}]
	}`, http.StatusOK)

	p := NewHTTPEnrichmentProvider("Qichacha", "business-registry", srv.URL, "/enrich/business", time.Second, zerolog.Nop())
	matches, err := p.Search(context.Background(), "张三", "1985-03-09")
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "biz-1", matches[0].ID)
	assert.Equal(t, "https://example.com/biz-1", matches[0].SourceURL)
}

func TestNormalizeBirthDate(t *testing.T) {
	cases := map[string]string{
		"1985-03-09": "1985-03-09",
		"1985/3/9":   "1985-03-09",
		"19850309":   "1985-03-09",
		"1985.03.09": "1985-03-09",
		"":           "",
		"unknown":    "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeBirthDate(in), in)
	}
}
