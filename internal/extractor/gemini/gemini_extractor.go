package gemini

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
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	providerName = "gemini"
)

// Extractor implements port.RemoteExtractor using Google's Gemini API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Gemini-based extractor.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	return newExtractor(cfg, cfg.Endpoint)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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

	var parts []map[string]interface{}
	for _, img := range input.Images {
		switch img.ContentType {
		case "application/pdf", "image/jpeg", "image/png":
		default:
			return nil, extractor.NewError(extractor.KindMalformed, providerName,
				fmt.Sprintf("unsupported content type for extraction: %s", img.ContentType), nil)
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": img.ContentType,
				"data":      base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	parts = append(parts, map[string]interface{}{
		"text": extractor.BuildQuotationPrompt(input.FileName, input.Text),
	})

	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": extractor.SystemPrompt}},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  16384,
			"temperature":      0,
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
	req.Header.Set("x-goog-api-key", x.apiKey)

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

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.RemoteOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "unmarshaling response", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "empty response from API: no candidates", nil)
	}
	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, extractor.NewError(extractor.KindTooLarge, providerName,
			"output truncated (finishReason: MAX_TOKENS): response exceeded output token limit", nil)
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, extractor.NewError(extractor.KindMalformed, providerName, "empty response from API: no parts", nil)
	}

	return &port.RemoteOutput{
		Raw:       json.RawMessage(resp.Candidates[0].Content.Parts[0].Text),
		ModelUsed: model,
	}, nil
}
