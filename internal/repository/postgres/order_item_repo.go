package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sva/internal/domain"
	"sva/internal/port"
)

type orderItemRepo struct {
	db queryer
}

// NewOrderItemRepo creates a new PostgreSQL-backed OrderItemRepository.
func NewOrderItemRepo(db *sqlx.DB) port.OrderItemRepository {
	return &orderItemRepo{db: db}
}

func (r *orderItemRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("orderItemRepo.DeleteByOrder: %w", err)
	}
	return nil
}

func (r *orderItemRepo) CreateBatch(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		items[i].CreatedAt = now
	}

	query := `INSERT INTO order_items (id, order_id, product_id, code, description, quantity,
		quantity_received, unit, unit_price, total_value, created_at)
		VALUES (:id, :order_id, :product_id, :code, :description, :quantity,
		:quantity_received, :unit, :unit_price, :total_value, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("orderItemRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *orderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at, description", orderID)
	if err != nil {
		return nil, fmt.Errorf("orderItemRepo.ListByOrder: %w", err)
	}
	return items, nil
}

func (r *orderItemRepo) UpdateReceived(ctx context.Context, orderID, itemID uuid.UUID, quantity float64, receivedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE order_items SET quantity_received = $1, received_at = $2 WHERE id = $3 AND order_id = $4",
		quantity, receivedAt.UTC(), itemID, orderID)
	if err != nil {
		return fmt.Errorf("orderItemRepo.UpdateReceived: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOrderItemNotFound
	}
	return nil
}
