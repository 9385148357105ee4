package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sva/internal/config"
	"sva/internal/extractor"
	"sva/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	providerName = "claude"
)

// Extractor implements port.RemoteExtractor using the Anthropic Messages API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Claude-based extractor from a provider config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newExtractor(cfg, endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (x *Extractor) Extract(ctx context.Context, input port.RemoteInput) (*port.RemoteOutput, error) {
	if x.apiKey == "" {
		return nil, extractor.NewError(extractor.KindConfig, providerName, "missing configuration: API key not set", nil)
	}

	prompt := extractor.BuildQuotationPrompt(input.FileName, input.Text)
	contentBlocks, err := buildContentBlocks(input, prompt)
	if err != nil {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "building content blocks", err)
	}

	reqBody := map[string]interface{}{
		"model":       x.model,
		"max_tokens":  16384,
		"temperature": 0,
		"system":      extractor.SystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", x.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

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

	return parseResponse(respBody, x.model)
}

func buildContentBlocks(input port.RemoteInput, prompt string) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	for _, img := range input.Images {
		encoded := base64.StdEncoding.EncodeToString(img.Data)
		switch img.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "document",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": "application/pdf",
					"data":       encoded,
				},
			})
		case "image/jpeg", "image/png":
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": img.ContentType,
					"data":       encoded,
				},
			})
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", img.ContentType)
		}
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.RemoteOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "unmarshaling response", err)
	}

	if len(resp.Content) == 0 {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "empty response from API", nil)
	}

	if resp.StopReason == "max_tokens" {
		return nil, extractor.NewError(extractor.KindTooLarge, providerName,
			"output truncated (stop_reason: max_tokens): response exceeded output token limit", nil)
	}

	var text string
	for _, c := range resp.Content {
		if c.Type == "text" {
			text = c.Text
			break
		}
	}
	if text == "" {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "no text block in response", nil)
	}

	return &port.RemoteOutput{
		Raw:       json.RawMessage(text),
		ModelUsed: model,
	}, nil
}
