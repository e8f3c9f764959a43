package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// MockClaimRepo is a mock implementation of port.ClaimRepository.
type MockClaimRepo struct {
	mock.Mock
}

func (m *MockClaimRepo) CreateBatch(ctx context.Context, claims []domain.Claim) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockClaimRepo) ListByPatent(ctx context.Context, patentID uuid.UUID) ([]domain.Claim, error) {
	args := m.Called(ctx, patentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepo) DeleteByPatent(ctx context.Context, patentID uuid.UUID) error {
	args := m.Called(ctx, patentID)
	return args.Error(0)
}
