package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sva/internal/domain"
	"sva/internal/service"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.PurchaseOrder, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PurchaseOrder), args.Int(1), args.Error(2)
}

func (m *MockOrderService) Get(ctx context.Context, id uuid.UUID) (*service.OrderWithItems, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderWithItems), args.Error(1)
}

func (m *MockOrderService) Transition(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.PurchaseOrder, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseOrder), args.Error(1)
}

func (m *MockOrderService) Receive(ctx context.Context, id uuid.UUID, receipts []domain.ItemReceipt) (*service.OrderWithItems, error) {
	args := m.Called(ctx, id, receipts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderWithItems), args.Error(1)
}
