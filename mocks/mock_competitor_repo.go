package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// MockCompetitorRepo is a mock implementation of port.CompetitorRepository.
type MockCompetitorRepo struct {
	mock.Mock
}

func (m *MockCompetitorRepo) Create(ctx context.Context, competitor *domain.Competitor) error {
	args := m.Called(ctx, competitor)
	return args.Error(0)
}

func (m *MockCompetitorRepo) GetByID(ctx context.Context, competitorID uuid.UUID) (*domain.Competitor, error) {
	args := m.Called(ctx, competitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Competitor), args.Error(1)
}

func (m *MockCompetitorRepo) GetByNormalizedName(ctx context.Context, companyID uuid.UUID, normalizedName string) (*domain.Competitor, error) {
	args := m.Called(ctx, companyID, normalizedName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Competitor), args.Error(1)
}

func (m *MockCompetitorRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Competitor, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Competitor), args.Int(1), args.Error(2)
}

func (m *MockCompetitorRepo) Update(ctx context.Context, competitor *domain.Competitor) error {
	args := m.Called(ctx, competitor)
	return args.Error(0)
}

func (m *MockCompetitorRepo) UpdateResearchStatus(ctx context.Context, competitorID uuid.UUID, status domain.ResearchStatus, lastError string) error {
	args := m.Called(ctx, competitorID, status, lastError)
	return args.Error(0)
}

func (m *MockCompetitorRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Competitor, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Competitor), args.Error(1)
}

func (m *MockCompetitorRepo) Delete(ctx context.Context, companyID, competitorID uuid.UUID) error {
	args := m.Called(ctx, companyID, competitorID)
	return args.Error(0)
}
