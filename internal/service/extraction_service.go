package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"sva/internal/domain"
	"sva/internal/export"
	"sva/internal/extractor"
	"sva/internal/port"
	"sva/internal/reconcile"
)

// UploadInput is the DTO for submitting a document for extraction. Either
// FileBase64 or Images must be set; Text alone is accepted for pasted reports.
type UploadInput struct {
	FileBase64 string
	Images     []string
	FileName   string
	Text       string
	Mode       domain.ExtractionMode
}

// ConfirmOutput is the outcome of confirming a staged extraction.
type ConfirmOutput struct {
	Extraction *domain.Extraction `json:"extraction"`
	Report     *reconcile.Report  `json:"report"`
}

// ExportFile is a rendered export ready to be streamed to the client.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// OriginalLink is a time-limited download URL for an archived original.
type OriginalLink struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// ExtractionSettings carries the configuration an ExtractionService needs.
type ExtractionSettings struct {
	DefaultMode     domain.ExtractionMode
	MaxPayloadBytes int
	Bucket          string
	PresignExpiry   int64
	ReportEmail     string
	Reconcile       reconcile.Options
}

// ExtractionService defines the extraction staging and review contract.
type ExtractionService interface {
	// Parse renders and extracts a document without persisting anything.
	Parse(ctx context.Context, input *UploadInput) (*extractor.Outcome, error)
	Upload(ctx context.Context, input *UploadInput) (*domain.Extraction, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error)
	Confirm(ctx context.Context, id uuid.UUID, corrected *domain.ExtractionResult) (*ConfirmOutput, error)
	Decline(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	Export(ctx context.Context, id uuid.UUID, format string) (*ExportFile, error)
	// OriginalURL presigns the archived original of an extraction.
	OriginalURL(ctx context.Context, id uuid.UUID) (*OriginalLink, error)
}

type extractionService struct {
	repo       port.ExtractionRepository
	renderer   port.DocumentRenderer
	selector   *extractor.Selector
	reconciler *reconcile.Engine
	storage    port.ObjectStorage
	notifier   port.EmailSender
	settings   ExtractionSettings
	now        func() time.Time
}

// NewExtractionService creates a new ExtractionService implementation.
// storage may be nil, in which case originals are not archived.
func NewExtractionService(
	repo port.ExtractionRepository,
	renderer port.DocumentRenderer,
	selector *extractor.Selector,
	reconciler *reconcile.Engine,
	storage port.ObjectStorage,
	notifier port.EmailSender,
	settings ExtractionSettings,
) ExtractionService {
	if settings.DefaultMode == "" {
		settings.DefaultMode = domain.ModeLocal
	}
	if settings.PresignExpiry <= 0 {
		settings.PresignExpiry = 3600
	}
	return &extractionService{
		repo:       repo,
		renderer:   renderer,
		selector:   selector,
		reconciler: reconciler,
		storage:    storage,
		notifier:   notifier,
		settings:   settings,
		now:        time.Now,
	}
}

// decodedUpload is an UploadInput after payload validation.
type decodedUpload struct {
	mode     domain.ExtractionMode
	fileName string
	data     []byte
	images   [][]byte
	text     string
}

func (s *extractionService) decode(input *UploadInput) (*decodedUpload, error) {
	mode := input.Mode
	if mode == "" {
		mode = s.settings.DefaultMode
	}
	if !domain.ValidExtractionModes[mode] {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	d := &decodedUpload{mode: mode, fileName: strings.TrimSpace(input.FileName), text: strings.TrimSpace(input.Text)}
	if input.FileBase64 == "" && len(input.Images) == 0 && d.text == "" {
		return nil, domain.ErrMissingFile
	}

	total := 0
	if input.FileBase64 != "" {
		data, err := DecodeBase64(input.FileBase64)
		if err != nil {
			return nil, err
		}
		d.data = data
		total += len(data)
	}
	for i, img := range input.Images {
		data, err := DecodeBase64(img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		d.images = append(d.images, data)
		total += len(data)
	}
	if s.settings.MaxPayloadBytes > 0 && total > s.settings.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrFileTooLarge, total, s.settings.MaxPayloadBytes)
	}
	return d, nil
}

func (s *extractionService) render(ctx context.Context, d *decodedUpload) (*port.RenderOutput, error) {
	if len(d.data) == 0 && len(d.images) == 0 {
		return &port.RenderOutput{Pages: []port.Page{{Number: 1, Text: d.text}}}, nil
	}
	return s.renderer.Render(ctx, port.RenderInput{FileName: d.fileName, Data: d.data, Images: d.images})
}

func (s *extractionService) extract(ctx context.Context, d *decodedUpload, rendered *port.RenderOutput) (*extractor.Outcome, error) {
	return s.selector.Extract(ctx, extractor.Request{
		Mode:        d.mode,
		FileName:    d.fileName,
		ContentType: rendered.ContentType,
		Document:    d.data,
		Pages:       rendered.Pages,
	})
}

func (s *extractionService) Parse(ctx context.Context, input *UploadInput) (*extractor.Outcome, error) {
	d, err := s.decode(input)
	if err != nil {
		return nil, err
	}
	rendered, err := s.render(ctx, d)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, d, rendered)
}

func (s *extractionService) Upload(ctx context.Context, input *UploadInput) (*domain.Extraction, error) {
	d, err := s.decode(input)
	if err != nil {
		return nil, err
	}

	ext := &domain.Extraction{
		ID:       uuid.New(),
		FileName: d.fileName,
		Mode:     d.mode,
	}

	rendered, err := s.render(ctx, d)
	if err != nil {
		if isInputError(err) {
			return nil, err
		}
		s.recordFailure(ctx, ext, "render", err)
		return nil, err
	}
	ext.ContentType = rendered.ContentType
	ext.PageCount = len(rendered.Pages)
	ext.StorageKey = s.archive(ctx, ext, d)

	outcome, err := s.extract(ctx, d, rendered)
	if err != nil {
		kind := string(extractor.KindOf(err))
		if kind == "" {
			kind = "extraction"
		}
		s.recordFailure(ctx, ext, kind, err)
		return nil, err
	}

	result, err := json.Marshal(outcome.Result)
	if err != nil {
		return nil, fmt.Errorf("marshaling extraction result: %w", err)
	}
	ext.Result = result
	if len(outcome.Rejected) > 0 {
		rejected, err := json.Marshal(outcome.Rejected)
		if err != nil {
			return nil, fmt.Errorf("marshaling rejected lines: %w", err)
		}
		ext.Rejected = rejected
	}
	ext.ModelUsed = outcome.ModelUsed
	ext.Status = domain.ExtractionStatusPendingReview

	if err := s.repo.Create(ctx, ext); err != nil {
		return nil, fmt.Errorf("creating extraction record: %w", err)
	}
	log.Printf("service.ExtractionService: staged extraction %s (%s, %s) with %d suppliers",
		ext.ID, ext.FileName, ext.Mode, len(outcome.Result.Suppliers))
	return ext, nil
}

// recordFailure stores a failed extraction row for audit. Storage errors are logged only.
func (s *extractionService) recordFailure(ctx context.Context, ext *domain.Extraction, kind string, cause error) {
	ext.Status = domain.ExtractionStatusFailed
	ext.ErrorKind = kind
	ext.ErrorMessage = cause.Error()
	log.Printf("service.ExtractionService: extraction %s of %s failed (%s): %v", ext.ID, ext.FileName, kind, cause)
	if err := s.repo.Create(ctx, ext); err != nil {
		log.Printf("service.ExtractionService: recording failed extraction %s: %v", ext.ID, err)
	}
}

// archive uploads the original document to object storage and returns its key.
// Archiving is best effort: a storage failure is logged and the key left empty.
func (s *extractionService) archive(ctx context.Context, ext *domain.Extraction, d *decodedUpload) string {
	if s.storage == nil || s.settings.Bucket == "" || (len(d.data) == 0 && len(d.images) == 0) {
		return ""
	}

	prefix := fmt.Sprintf("extractions/%s", ext.ID)
	objects := map[string][]byte{}
	for i, img := range d.images {
		objects[fmt.Sprintf("%s/page-%03d", prefix, i+1)] = img
	}
	primary := prefix + "/page-001"
	if len(d.data) > 0 {
		primary = prefix + "/" + baseName(d.fileName)
		objects[primary] = d.data
	}

	for key, data := range objects {
		contentType := ext.ContentType
		if key != primary || contentType == "" {
			contentType = "application/octet-stream"
		}
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.settings.Bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: contentType,
			Size:        int64(len(data)),
			Metadata: map[string]string{
				"extraction-id": ext.ID.String(),
				"mode":          string(ext.Mode),
			},
		})
		if err != nil {
			log.Printf("service.ExtractionService: archiving %s: %v", key, err)
			return ""
		}
	}
	return primary
}

func (s *extractionService) Get(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *extractionService) List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *extractionService) Confirm(ctx context.Context, id uuid.UUID, corrected *domain.ExtractionResult) (*ConfirmOutput, error) {
	ext, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ext.Status != domain.ExtractionStatusPendingReview {
		return nil, domain.ErrExtractionNotPending
	}

	var res *domain.ExtractionResult
	if corrected != nil {
		res, err = normalizeCorrection(corrected, ext.FileName)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshaling corrected result: %w", err)
		}
		ext.Result = b
	} else {
		res, err = ext.DecodeResult()
		if err != nil {
			return nil, err
		}
	}

	opts := s.settings.Reconcile
	opts.ExtractionID = &ext.ID
	rep := s.reconciler.Reconcile(ctx, res, opts)

	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshaling reconciliation report: %w", err)
	}
	ext.Report = reportJSON
	// Suppliers that failed stay retryable: confirming again replays the
	// whole result, which is idempotent for the ones already committed.
	if rep.Failed() == 0 {
		now := s.now().UTC()
		ext.Status = domain.ExtractionStatusConfirmed
		ext.ReviewedAt = &now
	}
	if err := s.repo.Update(ctx, ext); err != nil {
		return nil, fmt.Errorf("updating extraction record: %w", err)
	}

	s.notify(ctx, ext, rep)
	return &ConfirmOutput{Extraction: ext, Report: rep}, nil
}

// normalizeCorrection runs a reviewer's corrected result through the same
// coercion and validation as provider output.
func normalizeCorrection(corrected *domain.ExtractionResult, fileName string) (*domain.ExtractionResult, error) {
	b, err := json.Marshal(corrected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidExtractionResult, err)
	}
	res, err := extractor.Normalize("review", b, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidExtractionResult, err)
	}
	return res, nil
}

func (s *extractionService) notify(ctx context.Context, ext *domain.Extraction, rep *reconcile.Report) {
	if s.notifier == nil || s.settings.ReportEmail == "" {
		return
	}
	summary := port.TriageSummary{
		ExtractionID:    ext.ID,
		FileName:        ext.FileName,
		QuotationNumber: rep.QuotationNumber,
		HospitalUnit:    s.settings.Reconcile.HospitalUnit,
		Committed:       rep.Committed(),
		Failed:          rep.Failed(),
	}
	for _, o := range rep.Suppliers {
		line := fmt.Sprintf("%s: %s, %d itens", o.SupplierName, o.Action, o.ItemCount)
		if o.Error != "" {
			line += " (" + o.Error + ")"
		}
		summary.Lines = append(summary.Lines, line)
	}
	if err := s.notifier.SendTriageSummary(ctx, s.settings.ReportEmail, summary); err != nil {
		log.Printf("service.ExtractionService: sending triage summary for %s: %v", ext.ID, err)
	}
}

func (s *extractionService) Decline(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	ext, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ext.Status != domain.ExtractionStatusPendingReview {
		return nil, domain.ErrExtractionNotPending
	}
	now := s.now().UTC()
	ext.Status = domain.ExtractionStatusDeclined
	ext.ReviewedAt = &now
	if err := s.repo.Update(ctx, ext); err != nil {
		return nil, fmt.Errorf("updating extraction record: %w", err)
	}
	log.Printf("service.ExtractionService: extraction %s declined", ext.ID)
	return ext, nil
}

func (s *extractionService) Export(ctx context.Context, id uuid.UUID, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	ext, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := ext.DecodeResult()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, res); err != nil {
		return nil, fmt.Errorf("exporting extraction %s: %w", id, err)
	}
	return &ExportFile{
		FileName:    export.BuildFilename(res.QuotationNumber, f),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (s *extractionService) OriginalURL(ctx context.Context, id uuid.UUID) (*OriginalLink, error) {
	ext, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil || ext.StorageKey == "" {
		return nil, fmt.Errorf("original of extraction %s: %w", id, domain.ErrNotFound)
	}
	url, err := s.storage.GetPresignedURL(ctx, s.settings.Bucket, ext.StorageKey, s.settings.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning original of extraction %s: %w", id, err)
	}
	return &OriginalLink{URL: url, ExpiresIn: s.settings.PresignExpiry}, nil
}

// DecodeBase64 decodes a base64 payload, with or without a data URI prefix
// and padding.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, domain.ErrMissingFile
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, domain.ErrInvalidPayload
	}
	return data, nil
}

// isInputError reports whether a render failure is caused by the request
// rather than the document content.
func isInputError(err error) bool {
	return errors.Is(err, domain.ErrMissingFile) ||
		errors.Is(err, domain.ErrUnsupportedFileType) ||
		errors.Is(err, domain.ErrInvalidPayload)
}

func baseName(name string) string {
	b := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if b == "." || b == "/" {
		return "document"
	}
	return b
}
