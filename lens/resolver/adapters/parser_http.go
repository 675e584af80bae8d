package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

// parseResolveSchema pins the minimum shape the structured-extraction
// backend must return.
var parseResolveSchema = mustCompileSchema(`{
	"type": "object",
	"properties": {
		"subject": {
			"type": ["object", "null"],
			"properties": {
				"name": {"type": ["string", "null"]},
				"birth_date": {"type": ["string", "null"]},
				"gender": {"type": ["string", "null"]},
				"address_keywords": {"type": "array", "items": {"type": "string"}},
				"id_number_tail": {"type": ["string", "null"]}
			}
		},
		"candidates": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"name": {"type": "string"},
					"type": {"type": "string"},
					"score": {"type": "number"},
					"matched_fields": {"type": "array", "items": {"type": "string"}}
				},
				"required": ["id", "name"]
			}
		}
	},
	"required": ["candidates"]
}`)

type parseResolveResponse struct {
	Subject *struct {
		Name            string   `json:"name"`
		BirthDate       string   `json:"birth_date"`
		Gender          string   `json:"gender"`
		AddressKeywords []string `json:"address_keywords"`
		IDNumberTail    string   `json:"id_number_tail"`
	} `json:"subject"`
	Candidates []struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Type          string   `json:"type"`
		Score         float64  `json:"score"`
		MatchedFields []string `json:"matched_fields"`
	} `json:"candidates"`
}

// HTTPGraphParser calls the backend's parse-and-resolve endpoint and
// normalizes its payload into port types.
type HTTPGraphParser struct {
	client *jsonClient
}

// NewHTTPGraphParser creates a parser client against baseURL.
func NewHTTPGraphParser(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPGraphParser {
	return &HTTPGraphParser{client: newJSONClient(baseURL, timeout, logger)}
}

// ParseAndResolve sends the raw text and maps the validated response.
func (p *HTTPGraphParser) ParseAndResolve(ctx context.Context, text string) (ports.ParseResolution, error) {
	var resp parseResolveResponse
	payload := map[string]string{"text": text}
	if err := p.client.postJSON(ctx, "/graphrag/resolve", payload, parseResolveSchema, &resp); err != nil {
		return ports.ParseResolution{}, err
	}

	var res ports.ParseResolution
	if resp.Subject != nil {
		res.Subject = &ports.ParsedSubject{
			Name:            resp.Subject.Name,
			BirthDate:       resp.Subject.BirthDate,
			Gender:          resp.Subject.Gender,
			AddressKeywords: resp.Subject.AddressKeywords,
			IDNumberTail:    resp.Subject.IDNumberTail,
		}
	}
	for _, c := range resp.Candidates {
		res.Candidates = append(res.Candidates, ports.Candidate{
			ID:            c.ID,
			Name:          c.Name,
			Type:          ports.NormalizeEntityType(c.Type),
			Score:         c.Score,
			MatchedFields: c.MatchedFields,
			SourceKind:    ports.SourceExternalGraph,
		})
	}
	return res, nil
}

var _ ports.GraphParser = (*HTTPGraphParser)(nil)
