// Package edge calls a remote parse-report function, such as another
// deployment of this service, which runs the extraction on its side and
// answers with the ExtractionResult shape or an {"error": "..."} body.
package edge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sva/internal/config"
	"sva/internal/extractor"
	"sva/internal/port"
)

const providerName = "edge"

// Extractor implements port.RemoteExtractor against a parse-report endpoint.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

type request struct {
	Images     []string `json:"images,omitempty"`
	FileBase64 string   `json:"fileBase64,omitempty"`
	FileName   string   `json:"fileName"`
	Text       string   `json:"text,omitempty"`
}

// NewExtractor creates an edge extractor from a provider config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, cfg.Endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	model := cfg.DefaultModel
	if model == "" {
		model = providerName
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (x *Extractor) Extract(ctx context.Context, input port.RemoteInput) (*port.RemoteOutput, error) {
	if x.endpoint == "" {
		return nil, extractor.NewError(extractor.KindConfig, providerName, "missing configuration: endpoint not set", nil)
	}

	body := request{FileName: input.FileName, Text: input.Text}
	for _, img := range input.Images {
		encoded := base64.StdEncoding.EncodeToString(img.Data)
		if img.ContentType == "application/pdf" {
			body.FileBase64 = encoded
			continue
		}
		body.Images = append(body.Images, fmt.Sprintf("data:%s;base64,%s", img.ContentType, encoded))
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, extractor.TransportError(providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, extractor.TransportError(providerName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, extractor.ClassifyHTTPError(providerName, resp.StatusCode, resp.Header, respBody)
	}
	if len(strings.TrimSpace(string(respBody))) == 0 {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "empty response", nil)
	}

	return &port.RemoteOutput{
		Raw:       json.RawMessage(respBody),
		ModelUsed: x.model,
	}, nil
}
