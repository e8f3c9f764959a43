package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/jacksonhblau/patent-detector/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendAnalysisAlert(ctx context.Context, toEmail, toName string, alert port.AnalysisAlert) error {
	subject := fmt.Sprintf("Analysis complete: %s (%s risk)", alert.CompetitorName, alert.CompanyRisk)
	htmlBody := buildAlertHTML(toName, alert, s.frontendURL)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nThe research run for %s has finished.\n\nCompany risk: %s\nHighest product infringement probability: %d%%\n\nReview the full analysis: %s\n",
		toName, alert.CompetitorName, alert.CompanyRisk, alert.MaxInfringement, s.frontendURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildAlertHTML(name string, alert port.AnalysisAlert, frontendURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Competitor analysis complete</h2>
  <p>Hi %s,</p>
  <p>The research run for <strong>%s</strong> has finished.</p>
  <table style="border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 6px 12px; color: #666;">Company risk</td><td style="padding: 6px 12px;"><strong>%s</strong></td></tr>
    <tr><td style="padding: 6px 12px; color: #666;">Highest infringement probability</td><td style="padding: 6px 12px;"><strong>%d%%</strong></td></tr>
  </table>
  <p><a href="%s" style="color: #2a6fc9;">Review the per-product scores and settlement factors</a>.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Patent Detector - Portfolio Surveillance</p>
</body>
</html>`, name, alert.CompetitorName, alert.CompanyRisk, alert.MaxInfringement, frontendURL)
}
