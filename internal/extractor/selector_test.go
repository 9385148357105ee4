package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sva/internal/domain"
	"sva/internal/extractor"
	"sva/internal/port"
	"sva/internal/segment"
	"sva/mocks"
)

const selectorReport = `Cotação Nº 4521
Fornecedor: Acme Hospitalar
CNPJ: 12.345.678/0001-90
1001 Luva de procedimento M 10 CX 25,00 250,00
`

func TestSelector_Local(t *testing.T) {
	remote := new(mocks.MockRemoteExtractor)
	sel := extractor.NewSelector(segment.NewEngine(), remote)

	out, err := sel.Extract(context.Background(), extractor.Request{
		Mode:     domain.ModeLocal,
		FileName: "cotacao.pdf",
		Pages:    []port.Page{{Number: 1, Text: selectorReport}},
	})

	require.NoError(t, err)
	assert.Equal(t, "local-regex", out.ModelUsed)
	assert.Equal(t, "4521", out.Result.QuotationNumber)
	require.Len(t, out.Result.Suppliers, 1)
	assert.Equal(t, "Acme Hospitalar", out.Result.Suppliers[0].Name)
	remote.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestSelector_Local_NoText(t *testing.T) {
	sel := extractor.NewSelector(segment.NewEngine(), new(mocks.MockRemoteExtractor))

	_, err := sel.Extract(context.Background(), extractor.Request{
		Mode:  domain.ModeLocal,
		Pages: []port.Page{{Number: 1, Text: "  \n "}},
	})

	assert.Equal(t, extractor.KindNoText, extractor.KindOf(err))
}

func TestSelector_InvalidMode(t *testing.T) {
	sel := extractor.NewSelector(segment.NewEngine(), new(mocks.MockRemoteExtractor))

	_, err := sel.Extract(context.Background(), extractor.Request{Mode: "ocr"})

	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestSelector_Remote_SendsPageImages(t *testing.T) {
	remote := new(mocks.MockRemoteExtractor)
	sel := extractor.NewSelector(segment.NewEngine(), remote)

	png := []byte{0x89, 0x50, 0x4E, 0x47}
	want := port.RemoteInput{
		FileName: "cotacao.pdf",
		Text:     "Cotação 4521",
		Images:   []port.RemoteImage{{Data: png, ContentType: "image/png"}},
	}
	remote.On("Extract", mock.Anything, want).Return(&port.RemoteOutput{
		Raw:       json.RawMessage(`{"quotationNumber":"4521","suppliers":[{"name":"Acme","items":[{"description":"Gaze","quantity":2,"unitPrice":1.5}]}]}`),
		ModelUsed: "gpt-4o",
	}, nil)

	out, err := sel.Extract(context.Background(), extractor.Request{
		Mode:     domain.ModeRemote,
		FileName: "cotacao.pdf",
		Pages: []port.Page{
			{Number: 1, Text: "Cotação 4521", Image: png, ImageType: "image/png"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", out.ModelUsed)
	require.Len(t, out.Result.Suppliers, 1)
	assert.Equal(t, 3.0, out.Result.Suppliers[0].TotalValue)
	remote.AssertExpectations(t)
}

func TestSelector_Remote_SendsDocumentWithoutImages(t *testing.T) {
	remote := new(mocks.MockRemoteExtractor)
	sel := extractor.NewSelector(segment.NewEngine(), remote)

	doc := []byte("%PDF-1.4")
	remote.On("Extract", mock.Anything, mock.MatchedBy(func(in port.RemoteInput) bool {
		return len(in.Images) == 1 && in.Images[0].ContentType == "application/pdf"
	})).Return(&port.RemoteOutput{Raw: json.RawMessage(`{"quotationNumber":"1","suppliers":[]}`), ModelUsed: "claude"}, nil)

	_, err := sel.Extract(context.Background(), extractor.Request{
		Mode:        domain.ModeRemote,
		FileName:    "r.pdf",
		ContentType: "application/pdf",
		Document:    doc,
	})

	require.NoError(t, err)
	remote.AssertExpectations(t)
}

func TestSelector_Remote_NothingToSend(t *testing.T) {
	sel := extractor.NewSelector(segment.NewEngine(), new(mocks.MockRemoteExtractor))

	_, err := sel.Extract(context.Background(), extractor.Request{Mode: domain.ModeRemote})

	assert.Equal(t, extractor.KindNoText, extractor.KindOf(err))
}

func TestSelector_Remote_QuotaErrorBody(t *testing.T) {
	remote := new(mocks.MockRemoteExtractor)
	sel := extractor.NewSelector(segment.NewEngine(), remote)
	remote.On("Extract", mock.Anything, mock.Anything).
		Return(&port.RemoteOutput{Raw: json.RawMessage(`{"error":"insufficient_quota"}`), ModelUsed: "edge"}, nil)

	_, err := sel.Extract(context.Background(), extractor.Request{
		Mode:  domain.ModeRemote,
		Pages: []port.Page{{Number: 1, Text: "texto"}},
	})

	assert.Equal(t, extractor.KindQuota, extractor.KindOf(err))
}

func TestSelector_Remote_UnclassifiedError(t *testing.T) {
	remote := new(mocks.MockRemoteExtractor)
	sel := extractor.NewSelector(segment.NewEngine(), remote)
	remote.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := sel.Extract(context.Background(), extractor.Request{
		Mode:  domain.ModeRemote,
		Pages: []port.Page{{Number: 1, Text: "texto"}},
	})

	assert.Equal(t, extractor.KindUpstream, extractor.KindOf(err))
}
