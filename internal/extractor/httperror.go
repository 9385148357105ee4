package extractor

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// apiErrorBody covers the error payloads of the supported providers:
// {"error": "..."} and {"error": {"message": "...", "type": "...", "code": "..."}}.
type apiErrorBody struct {
	Error json.RawMessage `json:"error"`
	Code  string          `json:"code"`
}

func errorMessage(body []byte) string {
	var b apiErrorBody
	if err := json.Unmarshal(body, &b); err != nil || len(b.Error) == 0 {
		return truncate(string(body), 500)
	}
	var s string
	if err := json.Unmarshal(b.Error, &s); err == nil {
		if b.Code != "" {
			return b.Code + ": " + s
		}
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	}
	if err := json.Unmarshal(b.Error, &obj); err != nil {
		return truncate(string(body), 500)
	}
	msg := obj.Message
	if obj.Type != "" {
		msg = obj.Type + ": " + msg
	}
	if code, ok := obj.Code.(string); ok && code != "" && code != obj.Type {
		msg = code + ": " + msg
	}
	return msg
}

// ClassifyHTTPError turns a non-200 provider response into a classified Error.
func ClassifyHTTPError(provider string, status int, header http.Header, body []byte) *Error {
	msg := errorMessage(body)
	baseErr := fmt.Errorf("%s API error (status %d): %s", provider, status, msg)

	switch status {
	case http.StatusTooManyRequests:
		return NewRateLimitError(provider, baseErr, ParseRetryAfterHeader(header.Get("Retry-After")))
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewError(KindConfig, provider, "credentials rejected", baseErr)
	case http.StatusRequestEntityTooLarge:
		return NewError(KindTooLarge, provider, "document too large for one pass", baseErr)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return NewError(KindTimeout, provider, "provider timed out", baseErr)
	}

	kind := ClassifyMessage(msg)
	if kind == KindQuota {
		return NewRateLimitError(provider, baseErr, ParseRetryAfterHeader(header.Get("Retry-After")))
	}
	return NewError(kind, provider, msg, baseErr)
}
