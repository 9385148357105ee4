package extractor

import (
	"context"
	"fmt"
	"log"

	"sva/internal/domain"
	"sva/internal/port"
	"sva/internal/render"
	"sva/internal/segment"
)

// Request is one document to extract.
type Request struct {
	Mode        domain.ExtractionMode
	FileName    string
	ContentType string
	// Document is the original upload, sent to the remote provider when no
	// page images were rendered.
	Document []byte
	Pages    []port.Page
}

// Outcome is a successful extraction.
type Outcome struct {
	Result    *domain.ExtractionResult
	Rejected  []segment.RejectedLine
	ModelUsed string
}

// Selector runs either the local segmentation engine or the remote
// extractor and returns one normalized result shape.
type Selector struct {
	engine *segment.Engine
	remote port.RemoteExtractor
}

// NewSelector creates a Selector.
func NewSelector(engine *segment.Engine, remote port.RemoteExtractor) *Selector {
	return &Selector{engine: engine, remote: remote}
}

// Extract runs the strategy selected by req.Mode. Failures are *Error values
// except for invalid modes, which return domain.ErrInvalidMode.
func (s *Selector) Extract(ctx context.Context, req Request) (*Outcome, error) {
	switch req.Mode {
	case domain.ModeLocal:
		return s.extractLocal(req)
	case domain.ModeRemote:
		return s.extractRemote(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode)
	}
}

func (s *Selector) extractLocal(req Request) (*Outcome, error) {
	text := render.JoinText(req.Pages)
	if text == "" {
		return nil, NewError(KindNoText, "local",
			"could not read the document automatically, possibly a scanned image; send it as an image using remote extraction", nil)
	}
	rep := s.engine.Extract(text, req.FileName)
	log.Printf("extractor.Selector: local extraction of %s found %d suppliers, %d items, %d rejected lines",
		req.FileName, len(rep.Result.Suppliers), rep.Result.ItemCount(), len(rep.Rejected))
	return &Outcome{Result: rep.Result, Rejected: rep.Rejected, ModelUsed: "local-regex"}, nil
}

func (s *Selector) extractRemote(ctx context.Context, req Request) (*Outcome, error) {
	input := port.RemoteInput{
		FileName: req.FileName,
		Text:     render.JoinText(req.Pages),
	}
	for _, p := range req.Pages {
		if len(p.Image) > 0 {
			input.Images = append(input.Images, port.RemoteImage{Data: p.Image, ContentType: p.ImageType})
		}
	}
	if len(input.Images) == 0 && len(req.Document) > 0 && req.ContentType != "" {
		input.Images = []port.RemoteImage{{Data: req.Document, ContentType: req.ContentType}}
	}
	if len(input.Images) == 0 && input.Text == "" {
		return nil, NewError(KindNoText, "remote", "document has neither page images nor a text layer", nil)
	}

	out, err := s.remote.Extract(ctx, input)
	if err != nil {
		if KindOf(err) == "" {
			return nil, TransportError("remote", err)
		}
		return nil, err
	}

	res, err := Normalize(out.ModelUsed, out.Raw, req.FileName)
	if err != nil {
		return nil, err
	}
	log.Printf("extractor.Selector: remote extraction of %s (%s) found %d suppliers, %d items",
		req.FileName, out.ModelUsed, len(res.Suppliers), res.ItemCount())
	return &Outcome{Result: res, ModelUsed: out.ModelUsed}, nil
}
