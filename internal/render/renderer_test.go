package render_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sva/internal/domain"
	"sva/internal/port"
	"sva/internal/render"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func TestRenderer_MissingFile(t *testing.T) {
	r := render.NewRenderer(0)

	_, err := r.Render(context.Background(), port.RenderInput{FileName: "cotacao.pdf"})
	assert.ErrorIs(t, err, domain.ErrMissingFile)
}

func TestRenderer_UnsupportedExtension(t *testing.T) {
	r := render.NewRenderer(0)

	_, err := r.Render(context.Background(), port.RenderInput{FileName: "cotacao.docx", Data: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestRenderer_Image(t *testing.T) {
	r := render.NewRenderer(0)

	out, err := r.Render(context.Background(), port.RenderInput{FileName: "scan.PNG", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	require.Len(t, out.Pages, 1)
	assert.Equal(t, 1, out.Pages[0].Number)
	assert.Empty(t, out.Pages[0].Text)
	assert.Equal(t, pngBytes, out.Pages[0].Image)
}

func TestRenderer_ImageExtensionMismatch(t *testing.T) {
	r := render.NewRenderer(0)

	_, err := r.Render(context.Background(), port.RenderInput{FileName: "scan.jpg", Data: pngBytes})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestRenderer_PDFExtensionWithImageContent(t *testing.T) {
	r := render.NewRenderer(0)

	_, err := r.Render(context.Background(), port.RenderInput{FileName: "report.pdf", Data: jpegBytes})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestRenderer_UnreadablePDF(t *testing.T) {
	r := render.NewRenderer(0)

	_, err := r.Render(context.Background(), port.RenderInput{FileName: "report.pdf", Data: []byte("%PDF-1.4\ngarbage")})
	assert.ErrorIs(t, err, domain.ErrUnreadableDocument)
}

func TestRenderer_PreRenderedImagesOnly(t *testing.T) {
	r := render.NewRenderer(0)

	out, err := r.Render(context.Background(), port.RenderInput{
		FileName: "report.pdf",
		Images:   [][]byte{pngBytes, jpegBytes},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	require.Len(t, out.Pages, 2)
	assert.Equal(t, "image/png", out.Pages[0].ImageType)
	assert.Equal(t, "image/jpeg", out.Pages[1].ImageType)
	assert.Equal(t, 2, out.Pages[1].Number)
}

func TestRenderer_PreRenderedImageNotAnImage(t *testing.T) {
	r := render.NewRenderer(0)

	_, err := r.Render(context.Background(), port.RenderInput{
		FileName: "report.pdf",
		Images:   [][]byte{[]byte("plain text")},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestRenderer_TooManyPages(t *testing.T) {
	r := render.NewRenderer(1)

	_, err := r.Render(context.Background(), port.RenderInput{
		FileName: "report.pdf",
		Images:   [][]byte{pngBytes, pngBytes},
	})
	assert.ErrorIs(t, err, domain.ErrTooManyPages)
}

func TestJoinText(t *testing.T) {
	pages := []port.Page{
		{Number: 1, Text: "  FORNECEDOR: Acme  "},
		{Number: 2},
		{Number: 3, Text: "1234 Luvas 100 CX 10,50 1050,00"},
	}
	assert.Equal(t, "FORNECEDOR: Acme\n1234 Luvas 100 CX 10,50 1050,00", render.JoinText(pages))
	assert.Equal(t, "", render.JoinText(nil))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", render.Extension("Cotacao 123.PDF"))
	assert.Equal(t, "", render.Extension("noext"))
}
