package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

// CompetitorInput is the DTO for creating or updating a monitored competitor.
type CompetitorInput struct {
	Name        string   `json:"name" binding:"required"`
	Website     string   `json:"website"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
}

// CompetitorService manages competitors and their research lifecycle.
type CompetitorService interface {
	Create(ctx context.Context, ownerID, companyID uuid.UUID, input CompetitorInput) (*domain.Competitor, error)
	Get(ctx context.Context, ownerID uuid.UUID, competitorID uuid.UUID) (*domain.Competitor, error)
	List(ctx context.Context, ownerID, companyID uuid.UUID, offset, limit int) ([]domain.Competitor, int, error)
	Update(ctx context.Context, ownerID, competitorID uuid.UUID, input CompetitorInput) (*domain.Competitor, error)
	Delete(ctx context.Context, ownerID, competitorID uuid.UUID) error
	EnqueueResearch(ctx context.Context, ownerID, competitorID uuid.UUID) (*domain.Competitor, error)
	ListDocuments(ctx context.Context, ownerID, competitorID uuid.UUID) ([]domain.CompetitorDocument, error)
}

type competitorService struct {
	competitorRepo port.CompetitorRepository
	documentRepo   port.CompetitorDocumentRepository
	companyRepo    port.CompanyRepository
}

// NewCompetitorService creates a new CompetitorService implementation.
func NewCompetitorService(
	competitorRepo port.CompetitorRepository,
	documentRepo port.CompetitorDocumentRepository,
	companyRepo port.CompanyRepository,
) CompetitorService {
	return &competitorService{
		competitorRepo: competitorRepo,
		documentRepo:   documentRepo,
		companyRepo:    companyRepo,
	}
}

// NormalizeName lower-cases and trims a competitor name. It is the uniqueness
// key within a company, so "Acme Corp" and "acme corp " merge.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *competitorService) Create(ctx context.Context, ownerID, companyID uuid.UUID, input CompetitorInput) (*domain.Competitor, error) {
	if _, err := s.companyRepo.GetByID(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	competitor := &domain.Competitor{
		CompanyID:      companyID,
		Name:           strings.TrimSpace(input.Name),
		NormalizedName: NormalizeName(input.Name),
		Website:        strings.TrimSpace(input.Website),
		Description:    input.Description,
		Aliases:        input.Aliases,
		ResearchStatus: domain.ResearchIdle,
	}
	if err := s.competitorRepo.Create(ctx, competitor); err != nil {
		return nil, fmt.Errorf("competitor.Create: %w", err)
	}
	return competitor, nil
}

func (s *competitorService) Get(ctx context.Context, ownerID uuid.UUID, competitorID uuid.UUID) (*domain.Competitor, error) {
	return s.authorized(ctx, ownerID, competitorID)
}

func (s *competitorService) List(ctx context.Context, ownerID, companyID uuid.UUID, offset, limit int) ([]domain.Competitor, int, error) {
	if _, err := s.companyRepo.GetByID(ctx, ownerID, companyID); err != nil {
		return nil, 0, err
	}
	return s.competitorRepo.ListByCompany(ctx, companyID, offset, limit)
}

func (s *competitorService) Update(ctx context.Context, ownerID, competitorID uuid.UUID, input CompetitorInput) (*domain.Competitor, error) {
	competitor, err := s.authorized(ctx, ownerID, competitorID)
	if err != nil {
		return nil, err
	}

	competitor.Name = strings.TrimSpace(input.Name)
	competitor.NormalizedName = NormalizeName(input.Name)
	competitor.Website = strings.TrimSpace(input.Website)
	competitor.Description = input.Description
	competitor.Aliases = input.Aliases

	if err := s.competitorRepo.Update(ctx, competitor); err != nil {
		return nil, fmt.Errorf("competitor.Update: %w", err)
	}
	return competitor, nil
}

func (s *competitorService) Delete(ctx context.Context, ownerID, competitorID uuid.UUID) error {
	competitor, err := s.authorized(ctx, ownerID, competitorID)
	if err != nil {
		return err
	}
	return s.competitorRepo.Delete(ctx, competitor.CompanyID, competitorID)
}

// EnqueueResearch marks a competitor for the research worker. A competitor
// already queued or running is rejected so double-clicks don't double-spend
// LLM tokens; idle, complete, and failed competitors can always be
// (re-)enqueued.
func (s *competitorService) EnqueueResearch(ctx context.Context, ownerID, competitorID uuid.UUID) (*domain.Competitor, error) {
	competitor, err := s.authorized(ctx, ownerID, competitorID)
	if err != nil {
		return nil, err
	}

	switch competitor.ResearchStatus {
	case domain.ResearchQueued, domain.ResearchRunning:
		return nil, domain.ErrResearchInProgress
	}

	if err := s.competitorRepo.UpdateResearchStatus(ctx, competitorID, domain.ResearchQueued, ""); err != nil {
		return nil, fmt.Errorf("competitor.EnqueueResearch: %w", err)
	}
	competitor.ResearchStatus = domain.ResearchQueued
	competitor.LastError = ""
	return competitor, nil
}

func (s *competitorService) ListDocuments(ctx context.Context, ownerID, competitorID uuid.UUID) ([]domain.CompetitorDocument, error) {
	if _, err := s.authorized(ctx, ownerID, competitorID); err != nil {
		return nil, err
	}
	return s.documentRepo.ListByCompetitor(ctx, competitorID)
}

// authorized loads a competitor and verifies the caller owns its company.
func (s *competitorService) authorized(ctx context.Context, ownerID, competitorID uuid.UUID) (*domain.Competitor, error) {
	competitor, err := s.competitorRepo.GetByID(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companyRepo.GetByID(ctx, ownerID, competitor.CompanyID); err != nil {
		return nil, err
	}
	return competitor, nil
}
