package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"sva/internal/domain"
	"sva/internal/port"
)

// OrderWithItems is a purchase order together with its line items.
type OrderWithItems struct {
	domain.PurchaseOrder
	Items []domain.OrderItem `json:"items"`
}

// OrderService defines the purchase order workflow contract.
type OrderService interface {
	List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.PurchaseOrder, int, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderWithItems, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.PurchaseOrder, error)
	// Receive records delivered quantities and moves the order to partial or
	// full delivery depending on whether every item has been received.
	Receive(ctx context.Context, id uuid.UUID, receipts []domain.ItemReceipt) (*OrderWithItems, error)
}

type orderService struct {
	orderRepo port.OrderRepository
	itemRepo  port.OrderItemRepository
	tx        port.TxManager
}

// NewOrderService creates a new OrderService implementation.
func NewOrderService(orderRepo port.OrderRepository, itemRepo port.OrderItemRepository, tx port.TxManager) OrderService {
	return &orderService{orderRepo: orderRepo, itemRepo: itemRepo, tx: tx}
}

func (s *orderService) List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.PurchaseOrder, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, status)
	}
	return s.orderRepo.List(ctx, status, offset, limit)
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*OrderWithItems, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %s: %w", id, err)
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	return &OrderWithItems{PurchaseOrder: *order, Items: items}, nil
}

func (s *orderService) Transition(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.PurchaseOrder, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, to)
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, order.Status, to)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	log.Printf("service.OrderService: order %s moved from %s to %s", id, order.Status, to)
	order.Status = to
	return order, nil
}

func (s *orderService) Receive(ctx context.Context, id uuid.UUID, receipts []domain.ItemReceipt) (*OrderWithItems, error) {
	received := make(map[uuid.UUID]float64, len(receipts))
	informed := false
	for _, r := range receipts {
		if r.Quantity < 0 || math.IsNaN(r.Quantity) || math.IsInf(r.Quantity, 0) {
			return nil, fmt.Errorf("%w: item %s", domain.ErrInvalidReceipt, r.ItemID)
		}
		received[r.ItemID] = r.Quantity
		if r.Quantity > 0 {
			informed = true
		}
	}
	if !informed {
		return nil, domain.ErrNothingReceived
	}

	var result *OrderWithItems
	var from domain.OrderStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos port.Repositories) error {
		order, err := repos.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		items, err := repos.Items.ListByOrder(ctx, id)
		if err != nil {
			return fmt.Errorf("listing items of order %s: %w", id, err)
		}

		known := make(map[uuid.UUID]bool, len(items))
		for _, it := range items {
			known[it.ID] = true
		}
		for itemID := range received {
			if !known[itemID] {
				return fmt.Errorf("%w: %s", domain.ErrOrderItemNotFound, itemID)
			}
		}

		now := time.Now().UTC()
		target := domain.OrderStatusFullDelivery
		for i := range items {
			if q, ok := received[items[i].ID]; ok {
				items[i].QuantityReceived = q
				items[i].ReceivedAt = &now
			}
			if items[i].QuantityReceived < items[i].Quantity {
				target = domain.OrderStatusPartialDelivery
			}
		}
		if target != order.Status && !domain.CanTransition(order.Status, target) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, order.Status, target)
		}

		for _, it := range items {
			q, ok := received[it.ID]
			if !ok {
				continue
			}
			if err := repos.Items.UpdateReceived(ctx, id, it.ID, q, now); err != nil {
				return err
			}
		}
		if target != order.Status {
			if err := repos.Orders.UpdateStatus(ctx, id, target); err != nil {
				return err
			}
		}

		from = order.Status
		order.Status = target
		result = &OrderWithItems{PurchaseOrder: *order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("service.OrderService: order %s received %d item(s), %s to %s", id, len(received), from, result.Status)
	return result, nil
}
