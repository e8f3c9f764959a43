package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAnalysisAlert(ctx context.Context, toEmail, toName string, alert port.AnalysisAlert) error {
	args := m.Called(ctx, toEmail, toName, alert)
	return args.Error(0)
}
