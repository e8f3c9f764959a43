package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// MockAnalysisRepo is a mock implementation of port.AnalysisRepository.
type MockAnalysisRepo struct {
	mock.Mock
}

func (m *MockAnalysisRepo) Upsert(ctx context.Context, analysis *domain.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepo) GetByCompetitor(ctx context.Context, competitorID uuid.UUID) (*domain.Analysis, error) {
	args := m.Called(ctx, competitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockAnalysisRepo) Delete(ctx context.Context, competitorID uuid.UUID) error {
	args := m.Called(ctx, competitorID)
	return args.Error(0)
}
