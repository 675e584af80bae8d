package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

var externalSearchSchema = mustCompileSchema(`{
	"type": "object",
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"source": {"type": "string"},
					"id": {"type": ["string", "null"]},
					"name": {"type": "string"},
					"type": {"type": ["string", "null"]},
					"snippet": {"type": ["string", "null"]},
					"url": {"type": ["string", "null"]},
					"match_score": {"type": "number"}
				},
				"required": ["name"]
			}
		}
	},
	"required": ["results"]
}`)

type externalSearchResponse struct {
	Results []struct {
		Source     string  `json:"source"`
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Type       string  `json:"type"`
		Snippet    string  `json:"snippet"`
		URL        string  `json:"url"`
		MatchScore float64 `json:"match_score"`
	} `json:"results"`
}

// HTTPExternalSearcher queries the MCP bridge, the last-resort fallback when
// nothing internal matches.
type HTTPExternalSearcher struct {
	client *jsonClient
}

// NewHTTPExternalSearcher creates a searcher client against baseURL.
func NewHTTPExternalSearcher(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPExternalSearcher {
	return &HTTPExternalSearcher{client: newJSONClient(baseURL, timeout, logger)}
}

// Search posts the raw text plus the parsed subject hint, when present.
func (s *HTTPExternalSearcher) Search(ctx context.Context, text string, subject *ports.ParsedSubject) ([]ports.Candidate, error) {
	payload := map[string]any{"query": text}
	if subject != nil {
		payload["subject"] = map[string]any{
			"name":             subject.Name,
			"birth_date":       subject.BirthDate,
			"gender":           subject.Gender,
			"address_keywords": subject.AddressKeywords,
			"id_number_tail":   subject.IDNumberTail,
		}
	}

	var resp externalSearchResponse
	if err := s.client.postJSON(ctx, "/external/search", payload, externalSearchSchema, &resp); err != nil {
		return nil, err
	}

	out := make([]ports.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := ports.Candidate{
			ID:         r.ID,
			Name:       r.Name,
			Type:       ports.NormalizeEntityType(r.Type),
			Score:      r.MatchScore,
			SourceKind: ports.SourceExternalMCP,
			Summary:    r.Snippet,
			SourceURL:  r.URL,
		}
		if r.Source != "" {
			c.MatchedFields = []string{r.Source}
		}
		out = append(out, c)
	}
	return out, nil
}

var _ ports.ExternalSearcher = (*HTTPExternalSearcher)(nil)
