package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// jsonClient is the shared HTTP plumbing for remote collaborators. Responses
// are validated against a JSON schema before decoding, so malformed backend
// payloads surface as errors at the boundary instead of leaking raw shapes
// into the pipeline.
type jsonClient struct {
	http    *http.Client
	baseURL string
	logger  zerolog.Logger
}

func newJSONClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *jsonClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &jsonClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logger,
	}
}

func (c *jsonClient) postJSON(ctx context.Context, path string, payload any, schema *gojsonschema.Schema, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %d", path, resp.StatusCode)
	}

	if schema != nil {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return fmt.Errorf("validate %s response: %w", path, err)
		}
		if !result.Valid() {
			return fmt.Errorf("malformed %s response: %s", path, firstSchemaError(result))
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func firstSchemaError(result *gojsonschema.Result) string {
	for _, e := range result.Errors() {
		return e.String()
	}
	return "schema violation"
}

func mustCompileSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}
