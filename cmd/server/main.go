package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/email/noop"
	"github.com/jacksonhblau/patent-detector/internal/email/ses"
	"github.com/jacksonhblau/patent-detector/internal/extract"
	"github.com/jacksonhblau/patent-detector/internal/fetcher"
	"github.com/jacksonhblau/patent-detector/internal/handler"
	"github.com/jacksonhblau/patent-detector/internal/llm"
	"github.com/jacksonhblau/patent-detector/internal/port"
	"github.com/jacksonhblau/patent-detector/internal/registry"
	"github.com/jacksonhblau/patent-detector/internal/repository/postgres"
	"github.com/jacksonhblau/patent-detector/internal/research"
	"github.com/jacksonhblau/patent-detector/internal/router"
	"github.com/jacksonhblau/patent-detector/internal/service"
	s3storage "github.com/jacksonhblau/patent-detector/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	companyRepo := postgres.NewCompanyRepo(db)
	patentRepo := postgres.NewPatentRepo(db)
	claimRepo := postgres.NewClaimRepo(db)
	competitorRepo := postgres.NewCompetitorRepo(db)
	documentRepo := postgres.NewCompetitorDocumentRepo(db)
	analysisRepo := postgres.NewAnalysisRepo(db)

	// Initialize external clients
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	detector, err := extract.NewTextractDetector(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize text detector: %w", err)
	}
	extractor := extract.NewExtractor(s3Client, detector, &cfg.S3, &cfg.Extract)
	completer := llm.NewClient(&cfg.LLM)
	registryClient := registry.NewClient(&cfg.Registry)
	docFetcher := fetcher.New(&cfg.Fetcher)

	emailSender, err := newEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	companySvc := service.NewCompanyService(companyRepo)
	patentSvc := service.NewPatentService(patentRepo, claimRepo, companyRepo, extractor, completer, cfg.S3.MaxFileSizeMB)
	competitorSvc := service.NewCompetitorService(competitorRepo, documentRepo, companyRepo)
	analysisSvc := service.NewAnalysisService(analysisRepo, competitorRepo, companyRepo)

	pipeline := research.NewPipeline(
		completer, registryClient, docFetcher,
		competitorRepo, documentRepo, analysisRepo, companyRepo, patentRepo,
		cfg.Research,
	)
	worker := service.NewResearchQueueWorker(
		competitorRepo, companyRepo, userRepo, pipeline, emailSender,
		service.ResearchQueueConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
		},
	)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	companyH := handler.NewCompanyHandler(companySvc)
	patentH := handler.NewPatentHandler(patentSvc)
	competitorH := handler.NewCompetitorHandler(competitorSvc)
	analysisH := handler.NewAnalysisHandler(analysisSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins,
		authH, companyH, patentH, competitorH, analysisH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(workerDone)
	}()

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	return nil
}

// newEmailSender picks the configured alert transport. Anything other than
// "ses" gets the log-only sender, so local runs never need AWS credentials.
func newEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	if cfg.Provider == "ses" {
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
	}
	return noop.NewNoopSender(), nil
}
