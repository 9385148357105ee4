package render

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"sva/internal/domain"
	"sva/internal/port"
)

// Renderer implements port.DocumentRenderer. PDFs contribute their text layer
// page by page; rasterised page images are supplied by the caller.
type Renderer struct {
	maxPages int
}

// NewRenderer creates a Renderer that rejects documents with more than maxPages pages.
// A maxPages of 0 disables the limit.
func NewRenderer(maxPages int) *Renderer {
	return &Renderer{maxPages: maxPages}
}

func (r *Renderer) Render(ctx context.Context, input port.RenderInput) (*port.RenderOutput, error) {
	if len(input.Data) == 0 && len(input.Images) == 0 {
		return nil, domain.ErrMissingFile
	}

	fileType, ok := domain.AllowedExtensions[Extension(input.FileName)]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	images := make([]port.Page, 0, len(input.Images))
	for i, img := range input.Images {
		ct, err := sniffImage(img)
		if err != nil {
			return nil, err
		}
		images = append(images, port.Page{Number: i + 1, Image: img, ImageType: ct})
	}

	out := &port.RenderOutput{ContentType: domain.AllowedFileTypes[fileType]}

	switch {
	case len(input.Data) == 0:
		out.Pages = images
	case fileType == domain.FileTypePDF:
		if !mimetype.Detect(input.Data).Is("application/pdf") {
			return nil, domain.ErrUnsupportedFileType
		}
		texts, err := pdfPageTexts(ctx, input.Data)
		if err != nil {
			return nil, err
		}
		out.Pages = mergePages(texts, images)
	default:
		ct, err := sniffImage(input.Data)
		if err != nil {
			return nil, err
		}
		if domain.AllowedContentTypes[ct] != fileType {
			return nil, domain.ErrUnsupportedFileType
		}
		out.ContentType = ct
		out.Pages = []port.Page{{Number: 1, Image: input.Data, ImageType: ct}}
	}

	if r.maxPages > 0 && len(out.Pages) > r.maxPages {
		return nil, fmt.Errorf("%w: %d pages, limit %d", domain.ErrTooManyPages, len(out.Pages), r.maxPages)
	}
	return out, nil
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// JoinText concatenates the text layer of every page.
func JoinText(pages []port.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func sniffImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("image/jpeg"):
		return "image/jpeg", nil
	case mt.Is("image/png"):
		return "image/png", nil
	default:
		return "", fmt.Errorf("%w: detected %s", domain.ErrUnsupportedFileType, mt.String())
	}
}

// mergePages pairs text-layer pages with caller-rendered images by position.
func mergePages(texts []string, images []port.Page) []port.Page {
	n := len(texts)
	if len(images) > n {
		n = len(images)
	}
	pages := make([]port.Page, n)
	for i := range pages {
		pages[i].Number = i + 1
		if i < len(texts) {
			pages[i].Text = texts[i]
		}
		if i < len(images) {
			pages[i].Image = images[i].Image
			pages[i].ImageType = images[i].ImageType
		}
	}
	return pages
}

func pdfPageTexts(ctx context.Context, data []byte) (texts []string, err error) {
	// ledongthuc/pdf panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			texts = nil
			err = fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}

	total := reader.NumPage()
	texts = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("render.Renderer: page %d text extraction failed: %v", i, err)
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
