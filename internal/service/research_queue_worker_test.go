package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/service"
	"github.com/jacksonhblau/patent-detector/mocks"
)

type workerFixture struct {
	competitorRepo *mocks.MockCompetitorRepo
	companyRepo    *mocks.MockCompanyRepo
	userRepo       *mocks.MockUserRepo
	runner         *mocks.MockResearchRunner
	emailSender    *mocks.MockEmailSender
	worker         *service.ResearchQueueWorker
}

func newWorkerFixture(cfg service.ResearchQueueConfig) *workerFixture {
	f := &workerFixture{
		competitorRepo: new(mocks.MockCompetitorRepo),
		companyRepo:    new(mocks.MockCompanyRepo),
		userRepo:       new(mocks.MockUserRepo),
		runner:         new(mocks.MockResearchRunner),
		emailSender:    new(mocks.MockEmailSender),
	}
	f.worker = service.NewResearchQueueWorker(
		f.competitorRepo, f.companyRepo, f.userRepo, f.runner, f.emailSender, cfg)
	return f
}

func (f *workerFixture) runFor(d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.worker.Start(ctx)
		close(done)
	}()
	time.Sleep(d)
	cancel()
	<-done
}

func TestResearchQueueWorker_DispatchesAndMarksComplete(t *testing.T) {
	cfg := service.ResearchQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}
	f := newWorkerFixture(cfg)

	ownerID := uuid.New()
	companyID := uuid.New()
	competitor := domain.Competitor{
		ID:               uuid.New(),
		CompanyID:        companyID,
		Name:             "Meridian Optics",
		ResearchStatus:   domain.ResearchRunning,
		ResearchAttempts: 1,
	}
	analysis := &domain.Analysis{
		CompetitorID:    competitor.ID,
		MaxInfringement: 72,
		CompanyRisk:     domain.RiskHigh,
	}

	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{competitor}, nil).Once()
	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{}, nil).Maybe()
	f.runner.On("Run", mock.Anything, competitor.ID).Return(analysis, nil)
	f.competitorRepo.On("UpdateResearchStatus", mock.Anything, competitor.ID, domain.ResearchComplete, "").
		Return(nil)
	f.companyRepo.On("Get", mock.Anything, companyID).
		Return(&domain.Company{ID: companyID, OwnerID: ownerID}, nil)
	f.userRepo.On("GetByID", mock.Anything, ownerID).
		Return(&domain.User{ID: ownerID, Email: "owner@example.com", FullName: "Owner"}, nil)
	f.emailSender.On("SendAnalysisAlert", mock.Anything, "owner@example.com", "Owner",
		mock.AnythingOfType("port.AnalysisAlert")).Return(nil)

	f.runFor(250 * time.Millisecond)

	f.competitorRepo.AssertCalled(t, "UpdateResearchStatus",
		mock.Anything, competitor.ID, domain.ResearchComplete, "")
	f.emailSender.AssertCalled(t, "SendAnalysisAlert", mock.Anything,
		"owner@example.com", "Owner", mock.AnythingOfType("port.AnalysisAlert"))
}

func TestResearchQueueWorker_RequeuesUnderRetryCeiling(t *testing.T) {
	cfg := service.ResearchQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}
	f := newWorkerFixture(cfg)

	competitor := domain.Competitor{
		ID:               uuid.New(),
		CompanyID:        uuid.New(),
		ResearchStatus:   domain.ResearchRunning,
		ResearchAttempts: 1,
	}

	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{competitor}, nil).Once()
	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{}, nil).Maybe()
	f.runner.On("Run", mock.Anything, competitor.ID).Return(nil, assert.AnError)
	f.competitorRepo.On("UpdateResearchStatus", mock.Anything, competitor.ID,
		domain.ResearchQueued, assert.AnError.Error()).Return(nil)

	f.runFor(250 * time.Millisecond)

	f.competitorRepo.AssertCalled(t, "UpdateResearchStatus",
		mock.Anything, competitor.ID, domain.ResearchQueued, assert.AnError.Error())
	f.emailSender.AssertNotCalled(t, "SendAnalysisAlert",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResearchQueueWorker_ParksAsFailedAtRetryCeiling(t *testing.T) {
	cfg := service.ResearchQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}
	f := newWorkerFixture(cfg)

	competitor := domain.Competitor{
		ID:               uuid.New(),
		CompanyID:        uuid.New(),
		ResearchStatus:   domain.ResearchRunning,
		ResearchAttempts: 3,
	}

	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{competitor}, nil).Once()
	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{}, nil).Maybe()
	f.runner.On("Run", mock.Anything, competitor.ID).Return(nil, assert.AnError)
	f.competitorRepo.On("UpdateResearchStatus", mock.Anything, competitor.ID,
		domain.ResearchFailed, assert.AnError.Error()).Return(nil)

	f.runFor(250 * time.Millisecond)

	f.competitorRepo.AssertCalled(t, "UpdateResearchStatus",
		mock.Anything, competitor.ID, domain.ResearchFailed, assert.AnError.Error())
}

func TestResearchQueueWorker_RespectsConcurrencyCap(t *testing.T) {
	cfg := service.ResearchQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}
	f := newWorkerFixture(cfg)

	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{}, nil).Maybe()

	f.runFor(200 * time.Millisecond)

	for _, call := range f.competitorRepo.Calls {
		if call.Method == "ClaimQueued" {
			limit := call.Arguments.Get(1).(int)
			assert.LessOrEqual(t, limit, cfg.Concurrency)
		}
	}
}

func TestResearchQueueWorker_AlertFailureDoesNotUndoCompletion(t *testing.T) {
	cfg := service.ResearchQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}
	f := newWorkerFixture(cfg)

	ownerID := uuid.New()
	companyID := uuid.New()
	competitor := domain.Competitor{
		ID:             uuid.New(),
		CompanyID:      companyID,
		ResearchStatus: domain.ResearchRunning,
	}

	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{competitor}, nil).Once()
	f.competitorRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Competitor{}, nil).Maybe()
	f.runner.On("Run", mock.Anything, competitor.ID).
		Return(&domain.Analysis{CompetitorID: competitor.ID}, nil)
	f.competitorRepo.On("UpdateResearchStatus", mock.Anything, competitor.ID, domain.ResearchComplete, "").
		Return(nil)
	f.companyRepo.On("Get", mock.Anything, companyID).
		Return(&domain.Company{ID: companyID, OwnerID: ownerID}, nil)
	f.userRepo.On("GetByID", mock.Anything, ownerID).
		Return(&domain.User{ID: ownerID, Email: "owner@example.com"}, nil)
	f.emailSender.On("SendAnalysisAlert", mock.Anything, mock.Anything, mock.Anything,
		mock.AnythingOfType("port.AnalysisAlert")).Return(assert.AnError)

	f.runFor(250 * time.Millisecond)

	f.competitorRepo.AssertCalled(t, "UpdateResearchStatus",
		mock.Anything, competitor.ID, domain.ResearchComplete, "")
}
