package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/service"
	"github.com/jacksonhblau/patent-detector/mocks"
)

func TestAnalysisService_GetByCompetitor(t *testing.T) {
	analysisRepo := new(mocks.MockAnalysisRepo)
	competitorRepo := new(mocks.MockCompetitorRepo)
	companyRepo := new(mocks.MockCompanyRepo)
	svc := service.NewAnalysisService(analysisRepo, competitorRepo, companyRepo)

	ownerID := uuid.New()
	companyID := uuid.New()
	competitorID := uuid.New()
	competitorRepo.On("GetByID", mock.Anything, competitorID).
		Return(&domain.Competitor{ID: competitorID, CompanyID: companyID}, nil)
	companyRepo.On("GetByID", mock.Anything, ownerID, companyID).
		Return(&domain.Company{ID: companyID, OwnerID: ownerID}, nil)
	analysisRepo.On("GetByCompetitor", mock.Anything, competitorID).
		Return(&domain.Analysis{CompetitorID: competitorID, MaxInfringement: 64}, nil)

	analysis, err := svc.GetByCompetitor(context.Background(), ownerID, competitorID)

	assert.NoError(t, err)
	assert.Equal(t, 64, analysis.MaxInfringement)
}

func TestAnalysisService_GetByCompetitor_ForeignOwnerRejected(t *testing.T) {
	analysisRepo := new(mocks.MockAnalysisRepo)
	competitorRepo := new(mocks.MockCompetitorRepo)
	companyRepo := new(mocks.MockCompanyRepo)
	svc := service.NewAnalysisService(analysisRepo, competitorRepo, companyRepo)

	ownerID := uuid.New()
	companyID := uuid.New()
	competitorID := uuid.New()
	competitorRepo.On("GetByID", mock.Anything, competitorID).
		Return(&domain.Competitor{ID: competitorID, CompanyID: companyID}, nil)
	companyRepo.On("GetByID", mock.Anything, ownerID, companyID).
		Return(nil, domain.ErrNotFound)

	_, err := svc.GetByCompetitor(context.Background(), ownerID, competitorID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	analysisRepo.AssertNotCalled(t, "GetByCompetitor", mock.Anything, mock.Anything)
}

func TestAnalysisService_ExportReport_WritesWorkbook(t *testing.T) {
	analysisRepo := new(mocks.MockAnalysisRepo)
	competitorRepo := new(mocks.MockCompetitorRepo)
	companyRepo := new(mocks.MockCompanyRepo)
	svc := service.NewAnalysisService(analysisRepo, competitorRepo, companyRepo)

	ownerID := uuid.New()
	companyID := uuid.New()
	competitorID := uuid.New()
	factors, _ := json.Marshal([]domain.SettlementFactor{
		{Factor: "Litigation history", Impact: "positive", Detail: "settled twice"},
	})
	products, _ := json.Marshal([]domain.AnalysisProduct{
		{Name: "Relay X", InfringementProbability: 72},
	})

	competitorRepo.On("GetByID", mock.Anything, competitorID).
		Return(&domain.Competitor{ID: competitorID, CompanyID: companyID, Name: "Meridian Optics"}, nil)
	companyRepo.On("GetByID", mock.Anything, ownerID, companyID).
		Return(&domain.Company{ID: companyID, OwnerID: ownerID}, nil)
	analysisRepo.On("GetByCompetitor", mock.Anything, competitorID).
		Return(&domain.Analysis{
			CompetitorID:      competitorID,
			CompanyRisk:       domain.RiskHigh,
			SettlementFactors: factors,
			Products:          products,
			MaxInfringement:   72,
			MeanInfringement:  58,
		}, nil)

	var buf bytes.Buffer
	filename, err := svc.ExportReport(context.Background(), ownerID, competitorID, &buf)

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "Meridian_Optics_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
	assert.NotZero(t, buf.Len())
}

func TestAnalysisService_ExportReport_NoAnalysisYet(t *testing.T) {
	analysisRepo := new(mocks.MockAnalysisRepo)
	competitorRepo := new(mocks.MockCompetitorRepo)
	companyRepo := new(mocks.MockCompanyRepo)
	svc := service.NewAnalysisService(analysisRepo, competitorRepo, companyRepo)

	ownerID := uuid.New()
	companyID := uuid.New()
	competitorID := uuid.New()
	competitorRepo.On("GetByID", mock.Anything, competitorID).
		Return(&domain.Competitor{ID: competitorID, CompanyID: companyID, Name: "Meridian Optics"}, nil)
	companyRepo.On("GetByID", mock.Anything, ownerID, companyID).
		Return(&domain.Company{ID: companyID, OwnerID: ownerID}, nil)
	analysisRepo.On("GetByCompetitor", mock.Anything, competitorID).
		Return(nil, domain.ErrNotFound)

	var buf bytes.Buffer
	_, err := svc.ExportReport(context.Background(), ownerID, competitorID, &buf)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, buf.Len())
}
