package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

// researchTimeout bounds one full research run: profile completion, document
// gathering, registry lookups, and scoring.
const researchTimeout = 15 * time.Minute

// ResearchRunner runs one full research pass for a competitor.
type ResearchRunner interface {
	Run(ctx context.Context, competitorID uuid.UUID) (*domain.Analysis, error)
}

// ResearchQueueConfig holds settings for the research queue worker.
type ResearchQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// ResearchQueueWorker polls for queued competitors and dispatches research
// runs. Per-competitor failures never stop the batch.
type ResearchQueueWorker struct {
	competitorRepo port.CompetitorRepository
	companyRepo    port.CompanyRepository
	userRepo       port.UserRepository
	runner         ResearchRunner
	emailSender    port.EmailSender
	cfg            ResearchQueueConfig
	wg             sync.WaitGroup
}

// NewResearchQueueWorker creates a new ResearchQueueWorker.
func NewResearchQueueWorker(
	competitorRepo port.CompetitorRepository,
	companyRepo port.CompanyRepository,
	userRepo port.UserRepository,
	runner ResearchRunner,
	emailSender port.EmailSender,
	cfg ResearchQueueConfig,
) *ResearchQueueWorker {
	return &ResearchQueueWorker{
		competitorRepo: competitorRepo,
		companyRepo:    companyRepo,
		userRepo:       userRepo,
		runner:         runner,
		emailSender:    emailSender,
		cfg:            cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight research goroutines have finished.
func (w *ResearchQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("researchQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("researchQueueWorker: shutting down, waiting for in-flight runs...")
			w.wg.Wait()
			log.Printf("researchQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			competitors, err := w.competitorRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("researchQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range competitors {
				competitor := competitors[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight runs complete even during shutdown.
					runCtx, cancel := context.WithTimeout(context.Background(), researchTimeout)
					defer cancel()

					log.Printf("researchQueueWorker: dispatching competitor %s (attempt %d)",
						competitor.ID, competitor.ResearchAttempts)
					w.process(runCtx, &competitor)
				}()
			}
		}
	}
}

// process runs one research pass and records the outcome. A failed run is
// requeued until the attempt ceiling is hit, then parked as failed with the
// last error for the UI.
func (w *ResearchQueueWorker) process(ctx context.Context, competitor *domain.Competitor) {
	analysis, err := w.runner.Run(ctx, competitor.ID)
	if err != nil {
		log.Printf("researchQueueWorker: research for %s failed: %v", competitor.ID, err)
		status := domain.ResearchQueued
		if competitor.ResearchAttempts >= w.cfg.MaxRetries {
			status = domain.ResearchFailed
		}
		if uerr := w.competitorRepo.UpdateResearchStatus(ctx, competitor.ID, status, err.Error()); uerr != nil {
			log.Printf("researchQueueWorker: updating status for %s: %v", competitor.ID, uerr)
		}
		return
	}

	if err := w.competitorRepo.UpdateResearchStatus(ctx, competitor.ID, domain.ResearchComplete, ""); err != nil {
		log.Printf("researchQueueWorker: updating status for %s: %v", competitor.ID, err)
	}
	w.notify(ctx, competitor, analysis)
}

// notify emails the portfolio owner that the analysis is ready. Alert
// failures are logged only; the analysis itself is already stored.
func (w *ResearchQueueWorker) notify(ctx context.Context, competitor *domain.Competitor, analysis *domain.Analysis) {
	company, err := w.companyRepo.Get(ctx, competitor.CompanyID)
	if err != nil {
		log.Printf("researchQueueWorker: loading company for alert: %v", err)
		return
	}
	owner, err := w.userRepo.GetByID(ctx, company.OwnerID)
	if err != nil {
		log.Printf("researchQueueWorker: loading owner for alert: %v", err)
		return
	}

	alert := port.AnalysisAlert{
		CompetitorName:  competitor.Name,
		MaxInfringement: analysis.MaxInfringement,
		CompanyRisk:     string(analysis.CompanyRisk),
	}
	if err := w.emailSender.SendAnalysisAlert(ctx, owner.Email, owner.FullName, alert); err != nil {
		log.Printf("researchQueueWorker: sending alert for %s: %v", competitor.ID, err)
	}
}
