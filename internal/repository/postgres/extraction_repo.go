package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sva/internal/domain"
	"sva/internal/port"
)

type extractionRepo struct {
	db queryer
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, e *domain.Extraction) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `INSERT INTO extractions (id, file_name, content_type, mode, status, storage_key, page_count,
		model_used, result, rejected_lines, report, error_kind, error_message, reviewed_at, created_at, updated_at)
		VALUES (:id, :file_name, :content_type, :mode, :status, :storage_key, :page_count,
		:model_used, :result, :rejected_lines, :report, :error_kind, :error_message, :reviewed_at, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	var e domain.Extraction
	err := r.db.GetContext(ctx, &e, "SELECT * FROM extractions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *extractionRepo) List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM extractions"); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List count: %w", err)
	}

	var extractions []domain.Extraction
	err := r.db.SelectContext(ctx, &extractions,
		"SELECT * FROM extractions ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List: %w", err)
	}
	return extractions, total, nil
}

func (r *extractionRepo) Update(ctx context.Context, e *domain.Extraction) error {
	e.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx,
		`UPDATE extractions SET status = :status, storage_key = :storage_key, page_count = :page_count,
		 model_used = :model_used, result = :result, rejected_lines = :rejected_lines, report = :report,
		 error_kind = :error_kind, error_message = :error_message, reviewed_at = :reviewed_at,
		 updated_at = :updated_at
		 WHERE id = :id`, e)
	if err != nil {
		return fmt.Errorf("extractionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrExtractionNotFound
	}
	return nil
}
