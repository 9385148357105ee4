package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sva/internal/domain"
)

// OrderRepository defines persistence operations for purchase orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.PurchaseOrder) error
	Update(ctx context.Context, order *domain.PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error)
	List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.PurchaseOrder, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	// FindCandidates returns orders whose digit-only quotation number contains or is
	// contained in quotationDigits, or whose digit-only CNPJ equals cnpjDigits,
	// oldest first. Empty arguments never match.
	FindCandidates(ctx context.Context, quotationDigits, cnpjDigits string) ([]domain.PurchaseOrder, error)
}

// OrderItemRepository defines persistence operations for order line items.
type OrderItemRepository interface {
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
	CreateBatch(ctx context.Context, items []domain.OrderItem) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	// UpdateReceived records the cumulative quantity received for one item of
	// an order. It returns domain.ErrOrderItemNotFound when the item is not
	// part of the order.
	UpdateReceived(ctx context.Context, orderID, itemID uuid.UUID, quantity float64, receivedAt time.Time) error
}

// ProductRepository defines persistence operations for the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByCode(ctx context.Context, code string) (*domain.Product, error)
	// SearchByName returns catalog entries sharing at least one word with name.
	SearchByName(ctx context.Context, name string, limit int) ([]domain.Product, error)
}

// ExtractionRepository defines persistence operations for staged extractions.
type ExtractionRepository interface {
	Create(ctx context.Context, ext *domain.Extraction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error)
	Update(ctx context.Context, ext *domain.Extraction) error
}

// Repositories groups the repositories bound to one unit of work.
type Repositories struct {
	Orders   OrderRepository
	Items    OrderItemRepository
	Products ProductRepository
}

// TxManager runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
