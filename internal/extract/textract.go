package extract

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

type textractDetector struct {
	client *textract.Client
}

// NewTextractDetector creates a Textract-backed TextDetector. It reuses the
// S3 config's region and credentials since the detector reads from the same
// staging bucket.
func NewTextractDetector(cfg *config.S3Config) (port.TextDetector, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &textractDetector{client: textract.NewFromConfig(awsCfg)}, nil
}

func (d *textractDetector) StartJob(ctx context.Context, bucket, key string) (string, error) {
	out, err := d.client.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("textract start: %w", err)
	}
	if out.JobId == nil {
		return "", fmt.Errorf("textract start: empty job id")
	}
	return *out.JobId, nil
}

func (d *textractDetector) Poll(ctx context.Context, jobID, nextToken string) (*port.JobPoll, error) {
	input := &textract.GetDocumentTextDetectionInput{JobId: aws.String(jobID)}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	out, err := d.client.GetDocumentTextDetection(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("textract poll: %w", err)
	}

	poll := &port.JobPoll{Status: string(out.JobStatus)}
	if out.StatusMessage != nil {
		poll.StatusMessage = *out.StatusMessage
	}
	if out.NextToken != nil {
		poll.NextToken = *out.NextToken
	}
	for _, b := range out.Blocks {
		block := port.TextBlock{Type: string(b.BlockType)}
		if b.Page != nil {
			block.Page = int(*b.Page)
		}
		if b.Text != nil {
			block.Text = *b.Text
		}
		poll.Blocks = append(poll.Blocks, block)
	}
	return poll, nil
}
