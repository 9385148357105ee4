package port

import "context"

// Page is the content of one rendered document page. Either field may be empty:
// scanned PDFs carry no Text, and PDFs submitted without pre-rendered images carry no Image.
type Page struct {
	Number    int
	Text      string
	Image     []byte
	ImageType string
}

// RenderInput carries a decoded upload.
type RenderInput struct {
	FileName string
	Data     []byte
	Images   [][]byte
}

// RenderOutput is the ordered page content of a document.
type RenderOutput struct {
	ContentType string
	Pages       []Page
}

// DocumentRenderer turns an uploaded document into page text and images.
type DocumentRenderer interface {
	Render(ctx context.Context, input RenderInput) (*RenderOutput, error)
}
