package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

// CompanyInput is the DTO for creating or updating a portfolio company.
type CompanyInput struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	PortfolioSummary string `json:"portfolio_summary"`
}

// CompanyService manages the user's portfolio companies.
type CompanyService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CompanyInput) (*domain.Company, error)
	Get(ctx context.Context, ownerID, companyID uuid.UUID) (*domain.Company, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Company, error)
	Update(ctx context.Context, ownerID, companyID uuid.UUID, input CompanyInput) (*domain.Company, error)
	Delete(ctx context.Context, ownerID, companyID uuid.UUID) error
}

type companyService struct {
	companyRepo port.CompanyRepository
}

// NewCompanyService creates a new CompanyService implementation.
func NewCompanyService(companyRepo port.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) Create(ctx context.Context, ownerID uuid.UUID, input CompanyInput) (*domain.Company, error) {
	company := &domain.Company{
		OwnerID:          ownerID,
		Name:             input.Name,
		Description:      input.Description,
		PortfolioSummary: input.PortfolioSummary,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("company.Create: %w", err)
	}
	return company, nil
}

func (s *companyService) Get(ctx context.Context, ownerID, companyID uuid.UUID) (*domain.Company, error) {
	return s.companyRepo.GetByID(ctx, ownerID, companyID)
}

func (s *companyService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Company, error) {
	return s.companyRepo.ListByOwner(ctx, ownerID)
}

func (s *companyService) Update(ctx context.Context, ownerID, companyID uuid.UUID, input CompanyInput) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, ownerID, companyID)
	if err != nil {
		return nil, err
	}
	company.Name = input.Name
	company.Description = input.Description
	company.PortfolioSummary = input.PortfolioSummary

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("company.Update: %w", err)
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, ownerID, companyID uuid.UUID) error {
	return s.companyRepo.Delete(ctx, ownerID, companyID)
}
