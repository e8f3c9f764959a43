package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/export"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

// AnalysisService exposes stored analyses and their report export.
type AnalysisService interface {
	GetByCompetitor(ctx context.Context, ownerID, competitorID uuid.UUID) (*domain.Analysis, error)
	// ExportReport streams the XLSX report for a competitor's analysis and
	// returns the filename it should be served under.
	ExportReport(ctx context.Context, ownerID, competitorID uuid.UUID, w io.Writer) (string, error)
}

type analysisService struct {
	analysisRepo   port.AnalysisRepository
	competitorRepo port.CompetitorRepository
	companyRepo    port.CompanyRepository
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(
	analysisRepo port.AnalysisRepository,
	competitorRepo port.CompetitorRepository,
	companyRepo port.CompanyRepository,
) AnalysisService {
	return &analysisService{
		analysisRepo:   analysisRepo,
		competitorRepo: competitorRepo,
		companyRepo:    companyRepo,
	}
}

func (s *analysisService) GetByCompetitor(ctx context.Context, ownerID, competitorID uuid.UUID) (*domain.Analysis, error) {
	if _, err := s.authorized(ctx, ownerID, competitorID); err != nil {
		return nil, err
	}
	return s.analysisRepo.GetByCompetitor(ctx, competitorID)
}

func (s *analysisService) ExportReport(ctx context.Context, ownerID, competitorID uuid.UUID, w io.Writer) (string, error) {
	competitor, err := s.authorized(ctx, ownerID, competitorID)
	if err != nil {
		return "", err
	}
	analysis, err := s.analysisRepo.GetByCompetitor(ctx, competitorID)
	if err != nil {
		return "", err
	}
	if err := export.WriteAnalysisReport(w, competitor, analysis); err != nil {
		return "", fmt.Errorf("analysis.ExportReport: %w", err)
	}
	return export.BuildFilename(competitor.Name), nil
}

func (s *analysisService) authorized(ctx context.Context, ownerID, competitorID uuid.UUID) (*domain.Competitor, error) {
	competitor, err := s.competitorRepo.GetByID(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companyRepo.GetByID(ctx, ownerID, competitor.CompanyID); err != nil {
		return nil, err
	}
	return competitor, nil
}
