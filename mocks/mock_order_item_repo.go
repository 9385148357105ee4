package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"sva/internal/domain"
)

// MockOrderItemRepo is a mock implementation of port.OrderItemRepository.
type MockOrderItemRepo struct {
	mock.Mock
}

func (m *MockOrderItemRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderItemRepo) CreateBatch(ctx context.Context, items []domain.OrderItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepo) UpdateReceived(ctx context.Context, orderID, itemID uuid.UUID, quantity float64, receivedAt time.Time) error {
	args := m.Called(ctx, orderID, itemID, quantity, receivedAt)
	return args.Error(0)
}
