package port

import (
	"context"
	"encoding/json"
)

// RemoteImage is one page (or the whole document) sent to a remote extractor.
type RemoteImage struct {
	Data        []byte
	ContentType string
}

// RemoteInput carries one document for a single remote extraction call.
type RemoteInput struct {
	FileName string
	Images   []RemoteImage
	Text     string
}

// RemoteOutput contains the provider's raw JSON result.
type RemoteOutput struct {
	Raw       json.RawMessage
	ModelUsed string
}

// RemoteExtractor abstracts vision/language-model document extraction.
type RemoteExtractor interface {
	Extract(ctx context.Context, input RemoteInput) (*RemoteOutput, error)
}
