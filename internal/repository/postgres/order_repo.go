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

const orderColumns = `id, quotation_number, quotation_title, supplier_name, supplier_cnpj,
	supplier_email, order_number, delivery_deadline, expected_delivery_date, hospital_unit,
	status, total_value, extraction_id, created_at, updated_at`

type orderRepo struct {
	db queryer
}

// NewOrderRepo creates a new PostgreSQL-backed OrderRepository.
func NewOrderRepo(db *sqlx.DB) port.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *domain.PurchaseOrder) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	query := `INSERT INTO purchase_orders (id, quotation_number, quotation_title, supplier_name, supplier_cnpj,
		supplier_email, order_number, delivery_deadline, expected_delivery_date, hospital_unit,
		status, total_value, extraction_id, created_at, updated_at)
		VALUES (:id, :quotation_number, :quotation_title, :supplier_name, :supplier_cnpj,
		:supplier_email, :order_number, :delivery_deadline, :expected_delivery_date, :hospital_unit,
		:status, :total_value, :extraction_id, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("orderRepo.Create: %w", err)
	}
	return nil
}

func (r *orderRepo) Update(ctx context.Context, o *domain.PurchaseOrder) error {
	o.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx,
		`UPDATE purchase_orders SET quotation_number = :quotation_number, quotation_title = :quotation_title,
		 supplier_name = :supplier_name, supplier_cnpj = :supplier_cnpj, supplier_email = :supplier_email,
		 order_number = :order_number, delivery_deadline = :delivery_deadline,
		 expected_delivery_date = :expected_delivery_date, hospital_unit = :hospital_unit,
		 status = :status, total_value = :total_value, extraction_id = :extraction_id, updated_at = :updated_at
		 WHERE id = :id`, o)
	if err != nil {
		return fmt.Errorf("orderRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var o domain.PurchaseOrder
	err := r.db.GetContext(ctx, &o,
		"SELECT "+orderColumns+" FROM purchase_orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("orderRepo.GetByID: %w", err)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.PurchaseOrder, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM purchase_orders WHERE ($1 = '' OR status = $1)", string(status))
	if err != nil {
		return nil, 0, fmt.Errorf("orderRepo.List count: %w", err)
	}

	var orders []domain.PurchaseOrder
	err = r.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+` FROM purchase_orders WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("orderRepo.List: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE purchase_orders SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("orderRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) FindCandidates(ctx context.Context, quotationDigits, cnpjDigits string) ([]domain.PurchaseOrder, error) {
	if quotationDigits == "" && cnpjDigits == "" {
		return []domain.PurchaseOrder{}, nil
	}

	var orders []domain.PurchaseOrder
	err := r.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+` FROM purchase_orders
		 WHERE ($1 <> '' AND quotation_digits <> ''
		        AND (strpos(quotation_digits, $1) > 0 OR strpos($1, quotation_digits) > 0))
		    OR ($2 <> '' AND cnpj_digits = $2)
		 ORDER BY created_at ASC
		 FOR UPDATE`,
		quotationDigits, cnpjDigits)
	if err != nil {
		return nil, fmt.Errorf("orderRepo.FindCandidates: %w", err)
	}
	return orders, nil
}
