package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sva/internal/port"
)

// MockTxManager is a mock implementation of port.TxManager. WithinTx records
// the call and, unless the expectation returns an error, runs fn against Repos.
type MockTxManager struct {
	mock.Mock
	Repos port.Repositories
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.Repositories) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Repos)
}
