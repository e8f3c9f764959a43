package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// MockPatentRepo is a mock implementation of port.PatentRepository.
type MockPatentRepo struct {
	mock.Mock
}

func (m *MockPatentRepo) Create(ctx context.Context, patent *domain.Patent) error {
	args := m.Called(ctx, patent)
	return args.Error(0)
}

func (m *MockPatentRepo) GetByID(ctx context.Context, companyID, patentID uuid.UUID) (*domain.Patent, error) {
	args := m.Called(ctx, companyID, patentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patent), args.Error(1)
}

func (m *MockPatentRepo) GetByApplicationNumber(ctx context.Context, companyID uuid.UUID, appNo string) (*domain.Patent, error) {
	args := m.Called(ctx, companyID, appNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patent), args.Error(1)
}

func (m *MockPatentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Patent, int, error) {
	args := m.Called(ctx, companyID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Patent), args.Int(1), args.Error(2)
}

func (m *MockPatentRepo) Update(ctx context.Context, patent *domain.Patent) error {
	args := m.Called(ctx, patent)
	return args.Error(0)
}

func (m *MockPatentRepo) Delete(ctx context.Context, companyID, patentID uuid.UUID) error {
	args := m.Called(ctx, companyID, patentID)
	return args.Error(0)
}
