package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sva/internal/domain"
	"sva/internal/export"
	"sva/internal/extractor"
	"sva/internal/port"
	"sva/internal/reconcile"
	"sva/internal/segment"
	"sva/internal/service"
	"sva/mocks"
)

const acmeText = "FORNECEDOR: Acme Ltda\n1234 Luvas Cirúrgicas 100 CX 10,50 1050,00"

type extractionFixture struct {
	repo     *mocks.MockExtractionRepo
	renderer *mocks.MockDocumentRenderer
	remote   *mocks.MockRemoteExtractor
	storage  *mocks.MockObjectStorage
	notifier *mocks.MockEmailSender
	orders   *mocks.MockOrderRepo
	items    *mocks.MockOrderItemRepo
	products *mocks.MockProductRepo
	tx       *mocks.MockTxManager
}

func newExtractionFixture() *extractionFixture {
	f := &extractionFixture{
		repo:     new(mocks.MockExtractionRepo),
		renderer: new(mocks.MockDocumentRenderer),
		remote:   new(mocks.MockRemoteExtractor),
		storage:  new(mocks.MockObjectStorage),
		notifier: new(mocks.MockEmailSender),
		orders:   new(mocks.MockOrderRepo),
		items:    new(mocks.MockOrderItemRepo),
		products: new(mocks.MockProductRepo),
	}
	f.tx = &mocks.MockTxManager{Repos: port.Repositories{Orders: f.orders, Items: f.items, Products: f.products}}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	return f
}

func (f *extractionFixture) service(settings service.ExtractionSettings) service.ExtractionService {
	selector := extractor.NewSelector(segment.NewEngine(), f.remote)
	return service.NewExtractionService(f.repo, f.renderer, selector, reconcile.NewEngine(f.tx), f.storage, f.notifier, settings)
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func textPages(text string) *port.RenderOutput {
	return &port.RenderOutput{ContentType: "application/pdf", Pages: []port.Page{{Number: 1, Text: text}}}
}

func TestExtractionService_Upload_LocalSuccess(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})

	f.renderer.On("Render", mock.Anything, port.RenderInput{FileName: "cotacao_4521.pdf", Data: []byte("%PDF-fake")}).
		Return(textPages(acmeText), nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.Status == domain.ExtractionStatusPendingReview && e.ModelUsed == "local-regex" && e.PageCount == 1
	})).Return(nil)

	ext, err := svc.Upload(context.Background(), &service.UploadInput{
		FileBase64: "data:application/pdf;base64," + b64("%PDF-fake"),
		FileName:   "cotacao_4521.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ModeLocal, ext.Mode)
	assert.Equal(t, "application/pdf", ext.ContentType)
	assert.Empty(t, ext.StorageKey)

	res, err := ext.DecodeResult()
	require.NoError(t, err)
	assert.Equal(t, "4521", res.QuotationNumber)
	require.Len(t, res.Suppliers, 1)
	assert.Equal(t, "Acme Ltda", res.Suppliers[0].Name)
	f.repo.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestExtractionService_Upload_RemoteFailureRecordsFailedRow(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{DefaultMode: domain.ModeRemote})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&port.RenderOutput{
		ContentType: "image/png",
		Pages:       []port.Page{{Number: 1, Image: []byte("png"), ImageType: "image/png"}},
	}, nil)
	f.remote.On("Extract", mock.Anything, mock.Anything).
		Return(nil, extractor.NewRateLimitError("openai", errors.New("insufficient_quota"), 0))
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.Status == domain.ExtractionStatusFailed && e.ErrorKind == "quota" && e.ErrorMessage != ""
	})).Return(nil)

	ext, err := svc.Upload(context.Background(), &service.UploadInput{FileBase64: b64("png"), FileName: "foto.png"})
	assert.Nil(t, ext)
	require.Error(t, err)
	assert.Equal(t, extractor.KindQuota, extractor.KindOf(err))
	f.repo.AssertExpectations(t)
}

func TestExtractionService_Upload_RenderFailureRecordsFailedRow(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, domain.ErrUnreadableDocument)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.Status == domain.ExtractionStatusFailed && e.ErrorKind == "render"
	})).Return(nil)

	_, err := svc.Upload(context.Background(), &service.UploadInput{FileBase64: b64("junk"), FileName: "a.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnreadableDocument)
	f.repo.AssertExpectations(t)
}

func TestExtractionService_Upload_InputErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings service.ExtractionSettings
		input    service.UploadInput
		wantErr  error
	}{
		{"missing payload", service.ExtractionSettings{}, service.UploadInput{FileName: "a.pdf"}, domain.ErrMissingFile},
		{"invalid base64", service.ExtractionSettings{}, service.UploadInput{FileBase64: "!!!not base64!!!", FileName: "a.pdf"}, domain.ErrInvalidPayload},
		{"invalid image", service.ExtractionSettings{}, service.UploadInput{Images: []string{"@@"}, FileName: "a.png"}, domain.ErrInvalidPayload},
		{"too large", service.ExtractionSettings{MaxPayloadBytes: 4}, service.UploadInput{FileBase64: b64("12345678"), FileName: "a.pdf"}, domain.ErrFileTooLarge},
		{"invalid mode", service.ExtractionSettings{}, service.UploadInput{FileBase64: b64("x"), FileName: "a.pdf", Mode: "magic"}, domain.ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExtractionFixture()
			svc := f.service(tt.settings)

			_, err := svc.Upload(context.Background(), &tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExtractionService_Upload_UnsupportedTypeIsNotRecorded(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, domain.ErrUnsupportedFileType)

	_, err := svc.Upload(context.Background(), &service.UploadInput{FileBase64: b64("x"), FileName: "a.docx"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtractionService_Upload_ArchivesOriginal(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{Bucket: "sva-docs"})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(textPages(acmeText), nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "sva-docs" && strings.HasSuffix(in.Key, "/cotacao.pdf") &&
			in.ContentType == "application/pdf" && in.Size == 9
	})).Return(&port.UploadOutput{Location: "s3://sva-docs/x"}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	ext, err := svc.Upload(context.Background(), &service.UploadInput{FileBase64: b64("%PDF-fake"), FileName: "cotacao.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "extractions/"+ext.ID.String()+"/cotacao.pdf", ext.StorageKey)
	f.storage.AssertExpectations(t)
}

func TestExtractionService_Upload_ArchiveFailureDoesNotBlock(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{Bucket: "sva-docs"})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(textPages(acmeText), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	ext, err := svc.Upload(context.Background(), &service.UploadInput{FileBase64: b64("%PDF-fake"), FileName: "cotacao.pdf"})
	require.NoError(t, err)
	assert.Empty(t, ext.StorageKey)
	assert.Equal(t, domain.ExtractionStatusPendingReview, ext.Status)
}

func TestExtractionService_Upload_PersistenceError(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(textPages(acmeText), nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := svc.Upload(context.Background(), &service.UploadInput{FileBase64: b64("%PDF-fake"), FileName: "cotacao.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating extraction record")
}

func TestExtractionService_Parse_TextOnly(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})

	out, err := svc.Parse(context.Background(), &service.UploadInput{Text: acmeText, FileName: "cotacao_88.txt"})
	require.NoError(t, err)
	assert.Equal(t, "88", out.Result.QuotationNumber)
	require.Len(t, out.Result.Suppliers, 1)
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"plain", b64("hello"), "hello", nil},
		{"data uri", "data:image/png;base64," + b64("hello"), "hello", nil},
		{"no padding", strings.TrimRight(b64("hello"), "="), "hello", nil},
		{"line breaks", "aGVs\nbG8=", "hello", nil},
		{"empty data uri", "data:image/png;base64,", "", domain.ErrMissingFile},
		{"invalid", "not*base64", "", domain.ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.DecodeBase64(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func pendingExtraction(t *testing.T, res *domain.ExtractionResult) *domain.Extraction {
	t.Helper()
	b, err := json.Marshal(res)
	require.NoError(t, err)
	return &domain.Extraction{
		ID:       uuid.New(),
		FileName: "cotacao_4521.pdf",
		Mode:     domain.ModeLocal,
		Status:   domain.ExtractionStatusPendingReview,
		Result:   b,
	}
}

func supplierOnlyResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		QuotationNumber: "4521",
		QuotationTitle:  "Materiais",
		Suppliers: []domain.SupplierRecord{{
			Name:             "Acme Ltda",
			CNPJ:             "12.345.678/0001-90",
			DeliveryDeadline: "5",
			Items:            []domain.LineItem{},
		}},
	}
}

func TestExtractionService_Confirm_Success(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{
		ReportEmail: "compras@hospital.org",
		Reconcile:   reconcile.Options{HospitalUnit: "Hospital Central"},
	})
	ext := pendingExtraction(t, supplierOnlyResult())

	f.repo.On("GetByID", mock.Anything, ext.ID).Return(ext, nil)
	f.orders.On("FindCandidates", mock.Anything, "4521", "12345678000190").Return([]domain.PurchaseOrder{}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.PurchaseOrder) bool {
		return o.ExtractionID != nil && *o.ExtractionID == ext.ID && o.HospitalUnit == "Hospital Central"
	})).Return(nil)
	f.items.On("DeleteByOrder", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.Status == domain.ExtractionStatusConfirmed && e.ReviewedAt != nil && len(e.Report) > 0
	})).Return(nil)
	f.notifier.On("SendTriageSummary", mock.Anything, "compras@hospital.org", mock.MatchedBy(func(s port.TriageSummary) bool {
		return s.ExtractionID == ext.ID && s.Committed == 1 && s.Failed == 0 && len(s.Lines) == 1
	})).Return(nil)

	out, err := svc.Confirm(context.Background(), ext.ID, nil)
	require.NoError(t, err)

	require.Len(t, out.Report.Suppliers, 1)
	assert.Equal(t, reconcile.ActionCreated, out.Report.Suppliers[0].Action)
	assert.Equal(t, domain.ExtractionStatusConfirmed, out.Extraction.Status)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestExtractionService_Confirm_FailedSupplierStaysPending(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})
	ext := pendingExtraction(t, supplierOnlyResult())

	f.repo.On("GetByID", mock.Anything, ext.ID).Return(ext, nil)
	f.orders.On("FindCandidates", mock.Anything, "4521", "12345678000190").Return([]domain.PurchaseOrder{}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(errors.New("unique violation"))
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.Status == domain.ExtractionStatusPendingReview && e.ReviewedAt == nil && len(e.Report) > 0
	})).Return(nil)

	out, err := svc.Confirm(context.Background(), ext.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Report.Failed())
	assert.Equal(t, reconcile.StageCreate, out.Report.Suppliers[0].Stage)
	f.notifier.AssertNotCalled(t, "SendTriageSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Confirm_WithCorrection(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})
	ext := pendingExtraction(t, supplierOnlyResult())

	corrected := &domain.ExtractionResult{
		Suppliers: []domain.SupplierRecord{{Name: "Acme Hospitalar", Items: []domain.LineItem{}}},
	}

	f.repo.On("GetByID", mock.Anything, ext.ID).Return(ext, nil)
	f.orders.On("FindCandidates", mock.Anything, "4521", "").Return([]domain.PurchaseOrder{}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.PurchaseOrder) bool {
		return o.SupplierName == "Acme Hospitalar" && o.QuotationNumber == "4521"
	})).Return(nil)
	f.items.On("DeleteByOrder", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Confirm(context.Background(), ext.ID, corrected)
	require.NoError(t, err)

	res, err := out.Extraction.DecodeResult()
	require.NoError(t, err)
	assert.Equal(t, "4521", res.QuotationNumber)
	assert.Equal(t, "Acme Hospitalar", res.Suppliers[0].Name)
	assert.Equal(t, domain.DefaultDeliveryDeadline, res.Suppliers[0].DeliveryDeadline)
	f.orders.AssertExpectations(t)
}

func TestExtractionService_Confirm_NotPending(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})
	ext := pendingExtraction(t, supplierOnlyResult())
	ext.Status = domain.ExtractionStatusConfirmed

	f.repo.On("GetByID", mock.Anything, ext.ID).Return(ext, nil)

	_, err := svc.Confirm(context.Background(), ext.ID, nil)
	assert.ErrorIs(t, err, domain.ErrExtractionNotPending)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestExtractionService_Confirm_NotFound(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})
	id := uuid.New()

	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrExtractionNotFound)

	_, err := svc.Confirm(context.Background(), id, nil)
	assert.ErrorIs(t, err, domain.ErrExtractionNotFound)
}

func TestExtractionService_Decline(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})
	ext := pendingExtraction(t, supplierOnlyResult())

	f.repo.On("GetByID", mock.Anything, ext.ID).Return(ext, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Extraction) bool {
		return e.Status == domain.ExtractionStatusDeclined && e.ReviewedAt != nil
	})).Return(nil)

	got, err := svc.Decline(context.Background(), ext.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExtractionStatusDeclined, got.Status)

	_, err = svc.Decline(context.Background(), ext.ID)
	assert.ErrorIs(t, err, domain.ErrExtractionNotPending)
}

func TestExtractionService_Export(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})
	ext := pendingExtraction(t, supplierOnlyResult())

	f.repo.On("GetByID", mock.Anything, ext.ID).Return(ext, nil)

	file, err := svc.Export(context.Background(), ext.ID, "csv")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV.ContentType(), file.ContentType)
	assert.True(t, strings.HasPrefix(file.FileName, "cotacao_4521_"))
	assert.True(t, strings.HasSuffix(file.FileName, ".csv"))
	assert.True(t, bytes.HasPrefix(file.Data, export.BOM))
	assert.Contains(t, string(file.Data), "Acme Ltda")

	file, err = svc.Export(context.Background(), ext.ID, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.FileName, ".xlsx"))
	assert.True(t, bytes.HasPrefix(file.Data, []byte("PK")))
}

func TestExtractionService_Export_Errors(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{})

	_, err := svc.Export(context.Background(), uuid.New(), "pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedExportFormat)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)

	failed := &domain.Extraction{ID: uuid.New(), Status: domain.ExtractionStatusFailed}
	f.repo.On("GetByID", mock.Anything, failed.ID).Return(failed, nil)
	_, err = svc.Export(context.Background(), failed.ID, "csv")
	assert.ErrorIs(t, err, domain.ErrInvalidExtractionResult)
}

func TestExtractionService_OriginalURL(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{Bucket: "sva-docs", PresignExpiry: 600})
	id := uuid.New()
	key := "extractions/" + id.String() + "/cotacao.pdf"

	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Extraction{ID: id, StorageKey: key}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "sva-docs", key, int64(600)).Return("https://s3/signed", nil)

	link, err := svc.OriginalURL(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/signed", link.URL)
	assert.Equal(t, int64(600), link.ExpiresIn)
}

func TestExtractionService_OriginalURL_NotArchived(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{Bucket: "sva-docs"})
	id := uuid.New()

	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Extraction{ID: id}, nil)

	_, err := svc.OriginalURL(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Upload_ArchivesImagesWithoutDocument(t *testing.T) {
	f := newExtractionFixture()
	svc := f.service(service.ExtractionSettings{Bucket: "sva-docs"})

	f.renderer.On("Render", mock.Anything, mock.Anything).Return(textPages(acmeText), nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.HasSuffix(in.Key, "/page-001") && in.Metadata["mode"] == "local"
	})).Return(&port.UploadOutput{}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	ext, err := svc.Upload(context.Background(), &service.UploadInput{Images: []string{b64("\x89PNG")}, FileName: "scan.png"})
	require.NoError(t, err)
	assert.Equal(t, "extractions/"+ext.ID.String()+"/page-001", ext.StorageKey)
}
