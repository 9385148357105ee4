package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sva/internal/port"
)

// MockDocumentRenderer is a mock implementation of port.DocumentRenderer.
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) Render(ctx context.Context, input port.RenderInput) (*port.RenderOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RenderOutput), args.Error(1)
}
