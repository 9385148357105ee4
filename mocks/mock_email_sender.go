package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sva/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendTriageSummary(ctx context.Context, toEmail string, summary port.TriageSummary) error {
	args := m.Called(ctx, toEmail, summary)
	return args.Error(0)
}
