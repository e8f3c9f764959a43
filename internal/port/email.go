package port

import "context"

// AnalysisAlert carries what the completion email needs to say.
type AnalysisAlert struct {
	CompetitorName  string
	MaxInfringement int
	CompanyRisk     string
}

// EmailSender abstracts transactional email delivery.
type EmailSender interface {
	SendAnalysisAlert(ctx context.Context, toEmail, toName string, alert AnalysisAlert) error
}
