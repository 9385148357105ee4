package extractor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies extraction failures so callers can pick a recovery action.
type ErrorKind string

const (
	// KindConfig means provider credentials or settings are missing. Not retryable.
	KindConfig ErrorKind = "config"
	// KindQuota means the provider quota or billing limit is exhausted, or it rate limited the call.
	KindQuota ErrorKind = "quota"
	// KindTooLarge means the document does not fit a single extraction pass.
	KindTooLarge ErrorKind = "too_large"
	// KindNoText means nothing readable was found, usually a scanned PDF.
	KindNoText ErrorKind = "no_text"
	// KindMalformed means the provider answered with empty or invalid content.
	KindMalformed ErrorKind = "malformed"
	// KindTimeout means the provider did not answer in time. Retryable.
	KindTimeout ErrorKind = "timeout"
	// KindUpstream is any other provider or transport failure.
	KindUpstream ErrorKind = "upstream"
)

// DocumentProblem reports whether the failure is caused by the document itself
// (rescan or reformat) rather than by the system (retry or contact support).
func (k ErrorKind) DocumentProblem() bool {
	return k == KindNoText || k == KindTooLarge
}

// Error is a classified extraction failure.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindUpstream
}

// NewError creates a classified extraction error.
func NewError(kind ErrorKind, provider, msg string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Message: msg, Err: err}
}

// NewRateLimitError creates a quota Error for an HTTP 429. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *Error {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &Error{
		Kind:       KindQuota,
		Provider:   provider,
		Message:    "rate limited",
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Err:        err,
	}
}

// KindOf returns the kind of a classified error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// messageKinds maps fragments of provider error messages or codes to kinds.
// Checked in order; both English API codes and Portuguese messages appear.
var messageKinds = []struct {
	fragment string
	kind     ErrorKind
}{
	{"insufficient_quota", KindQuota},
	{"quota", KindQuota},
	{"billing", KindQuota},
	{"rate limit", KindQuota},
	{"rate_limit", KindQuota},
	{"openai_api_key", KindConfig},
	{"api key", KindConfig},
	{"configuração ausente", KindConfig},
	{"missing configuration", KindConfig},
	{"config_error", KindConfig},
	{"context_length", KindTooLarge},
	{"too large", KindTooLarge},
	{"too_large", KindTooLarge},
	{"muito grande", KindTooLarge},
	{"maximum context", KindTooLarge},
	{"escaneado", KindNoText},
	{"scanned", KindNoText},
	{"no readable text", KindNoText},
	{"no_text", KindNoText},
	{"não foi possível extrair texto", KindNoText},
	{"timeout", KindTimeout},
	{"timed out", KindTimeout},
	{"malformed", KindMalformed},
}

// ClassifyMessage maps a provider error message or code to an ErrorKind.
// Unrecognised messages are KindUpstream.
func ClassifyMessage(msg string) ErrorKind {
	m := strings.ToLower(msg)
	for _, mk := range messageKinds {
		if strings.Contains(m, mk.fragment) {
			return mk.kind
		}
	}
	return KindUpstream
}

// TransportError classifies a failed HTTP round trip.
func TransportError(provider string, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(KindTimeout, provider, "request timed out", err)
	}
	return NewError(KindUpstream, provider, fmt.Sprintf("calling %s API", provider), err)
}
