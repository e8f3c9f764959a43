package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// MockResearchRunner is a mock implementation of service.ResearchRunner.
type MockResearchRunner struct {
	mock.Mock
}

func (m *MockResearchRunner) Run(ctx context.Context, competitorID uuid.UUID) (*domain.Analysis, error) {
	args := m.Called(ctx, competitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}
