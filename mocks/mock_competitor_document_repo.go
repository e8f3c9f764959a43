package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// MockCompetitorDocumentRepo is a mock implementation of
// port.CompetitorDocumentRepository.
type MockCompetitorDocumentRepo struct {
	mock.Mock
}

func (m *MockCompetitorDocumentRepo) Upsert(ctx context.Context, doc *domain.CompetitorDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockCompetitorDocumentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.CompetitorDocument, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompetitorDocument), args.Error(1)
}

func (m *MockCompetitorDocumentRepo) ListByCompetitor(ctx context.Context, competitorID uuid.UUID) ([]domain.CompetitorDocument, error) {
	args := m.Called(ctx, competitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompetitorDocument), args.Error(1)
}

func (m *MockCompetitorDocumentRepo) CountByCompetitor(ctx context.Context, competitorID uuid.UUID) (int, error) {
	args := m.Called(ctx, competitorID)
	return args.Int(0), args.Error(1)
}

func (m *MockCompetitorDocumentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}
