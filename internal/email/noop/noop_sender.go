package noop

import (
	"context"
	"log"

	"github.com/jacksonhblau/patent-detector/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs alerts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendAnalysisAlert(_ context.Context, toEmail, toName string, alert port.AnalysisAlert) error {
	log.Printf("[NOOP EMAIL] Analysis alert for %s (%s): %s risk %s, max infringement %d%%",
		toName, toEmail, alert.CompetitorName, alert.CompanyRisk, alert.MaxInfringement)
	return nil
}
