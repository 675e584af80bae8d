package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

var enrichmentSearchSchema = mustCompileSchema(`{
	"type": "object",
	"properties": {
		"matches": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": ["string", "null"]},
					"name": {"type": "string"},
					"birth_date": {"type": ["string", "null"]},
					"score": {"type": "number"},
					"summary": {"type": ["string", "null"]},
					"url": {"type": ["string", "null"]}
				},
				"required": ["name"]
			}
		}
	},
	"required": ["matches"]
}`)

type enrichmentSearchResponse struct {
	Matches []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		BirthDate string  `json:"birth_date"`
		Score     float64 `json:"score"`
		Summary   string  `json:"summary"`
		URL       string  `json:"url"`
	} `json:"matches"`
}

// HTTPEnrichmentProvider is an EnrichmentProvider backed by a remote
// enrichment endpoint.
type HTTPEnrichmentProvider struct {
	name   string
	kind   string
	path   string
	client *jsonClient
}

// NewHTTPEnrichmentProvider creates a provider that posts lookups to
// baseURL+path.
func NewHTTPEnrichmentProvider(name, kind, baseURL, path string, timeout time.Duration, logger zerolog.Logger) *HTTPEnrichmentProvider {
	return &HTTPEnrichmentProvider{
		name:   name,
		kind:   kind,
		path:   path,
		client: newJSONClient(baseURL, timeout, logger),
	}
}

func (p *HTTPEnrichmentProvider) Name() string { return p.name }
func (p *HTTPEnrichmentProvider) Kind() string { return p.kind }

// Search posts the subject name and normalized birth date.
func (p *HTTPEnrichmentProvider) Search(ctx context.Context, name, birthDate string) ([]ports.ProviderMatch, error) {
	payload := map[string]string{"name": name, "birth_date": birthDate}
	var resp enrichmentSearchResponse
	if err := p.client.postJSON(ctx, p.path, payload, enrichmentSearchSchema, &resp); err != nil {
		return nil, err
	}
	out := make([]ports.ProviderMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		out = append(out, ports.ProviderMatch{
			ID:        m.ID,
			Name:      m.Name,
			BirthDate: m.BirthDate,
			Score:     m.Score,
			Summary:   m.Summary,
			SourceURL: m.URL,
		})
	}
	return out, nil
}

var _ EnrichmentProvider = (*HTTPEnrichmentProvider)(nil)
