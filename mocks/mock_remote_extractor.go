package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sva/internal/port"
)

// MockRemoteExtractor is a mock implementation of port.RemoteExtractor.
type MockRemoteExtractor struct {
	mock.Mock
}

func (m *MockRemoteExtractor) Extract(ctx context.Context, input port.RemoteInput) (*port.RemoteOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RemoteOutput), args.Error(1)
}
