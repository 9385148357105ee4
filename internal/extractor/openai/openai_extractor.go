package openai

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
	apiURL       = "https://api.openai.com/v1/chat/completions"
	providerName = "openai"
)

// Extractor implements port.RemoteExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates an OpenAI-based extractor from a provider config.
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
		model = "gpt-4o"
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
		return nil, extractor.NewError(extractor.KindConfig, providerName, "OPENAI_API_KEY not configured", nil)
	}

	prompt := extractor.BuildQuotationPrompt(input.FileName, input.Text)
	contentBlocks, err := buildContentBlocks(input, prompt)
	if err != nil {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "building content blocks", err)
	}

	reqBody := map[string]interface{}{
		"model":                 x.model,
		"max_completion_tokens": 16384,
		"temperature":           0,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": extractor.SystemPrompt,
			},
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+x.apiKey)

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
	blocks := []map[string]interface{}{
		{
			"type": "text",
			"text": prompt,
		},
	}

	for i, img := range input.Images {
		dataURI := fmt.Sprintf("data:%s;base64,%s", img.ContentType, base64.StdEncoding.EncodeToString(img.Data))
		switch img.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "file",
				"file": map[string]interface{}{
					"filename":  fileName(input.FileName, i),
					"file_data": dataURI,
				},
			})
		case "image/jpeg", "image/png":
			blocks = append(blocks, map[string]interface{}{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url":    dataURI,
					"detail": "high",
				},
			})
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", img.ContentType)
		}
	}

	return blocks, nil
}

func fileName(name string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("document-%d.pdf", i+1)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.RemoteOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "unmarshaling response", err)
	}

	if len(resp.Choices) == 0 {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "empty response from API: no choices", nil)
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, extractor.NewError(extractor.KindTooLarge, providerName,
			"output truncated (finish_reason: length): response exceeded output token limit", nil)
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "empty message content", nil)
	}

	return &port.RemoteOutput{
		Raw:       json.RawMessage(text),
		ModelUsed: model,
	}, nil
}
