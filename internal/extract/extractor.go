package extract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

// Extraction is the page-addressable output of one OCR run.
type Extraction struct {
	Pages      []domain.PageContent
	TotalPages int
	FullText   string
}

// PollPolicy bounds the job polling loop.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Extractor stages a document in object storage, runs an asynchronous
// text-detection job against it, and reassembles the result into
// 1-indexed, contiguous pages. Extraction is all-or-nothing.
type Extractor struct {
	storage       port.ObjectStorage
	detector      port.TextDetector
	bucket        string
	stagingPrefix string
	policy        PollPolicy
}

// NewExtractor creates an Extractor from configuration.
func NewExtractor(storage port.ObjectStorage, detector port.TextDetector, s3cfg *config.S3Config, excfg *config.ExtractConfig) *Extractor {
	return &Extractor{
		storage:       storage,
		detector:      detector,
		bucket:        s3cfg.Bucket,
		stagingPrefix: excfg.StagingPrefix,
		policy: PollPolicy{
			Interval:    excfg.PollInterval,
			MaxAttempts: excfg.MaxPolls,
		},
	}
}

// Extract runs OCR on a PDF. The staged object is deleted on every path;
// cleanup failures are logged and never mask the operation's outcome.
func (e *Extractor) Extract(ctx context.Context, doc []byte) (*Extraction, error) {
	key := fmt.Sprintf("%s/%s.pdf", e.stagingPrefix, uuid.New().String())

	_, err := e.storage.Upload(ctx, port.UploadInput{
		Bucket:      e.bucket,
		Key:         key,
		Body:        bytes.NewReader(doc),
		ContentType: "application/pdf",
		Size:        int64(len(doc)),
	})
	if err != nil {
		return nil, fmt.Errorf("staging document: %w", err)
	}
	defer e.cleanup(key)

	jobID, err := e.detector.StartJob(ctx, e.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("starting text detection: %w", err)
	}

	blocks, err := e.awaitJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return assemble(blocks), nil
}

// awaitJob polls the detection job until it succeeds, fails, or the attempt
// ceiling is reached. On success it drains all continuation tokens.
func (e *Extractor) awaitJob(ctx context.Context, jobID string) ([]port.TextBlock, error) {
	for attempt := 0; attempt < e.policy.MaxAttempts; attempt++ {
		poll, err := e.detector.Poll(ctx, jobID, "")
		if err != nil {
			return nil, fmt.Errorf("polling text detection: %w", err)
		}

		switch poll.Status {
		case port.JobStatusSucceeded:
			blocks := poll.Blocks
			token := poll.NextToken
			for token != "" {
				next, err := e.detector.Poll(ctx, jobID, token)
				if err != nil {
					return nil, fmt.Errorf("polling text detection continuation: %w", err)
				}
				blocks = append(blocks, next.Blocks...)
				token = next.NextToken
			}
			return blocks, nil
		case port.JobStatusFailed:
			return nil, fmt.Errorf("text detection failed: %s", poll.StatusMessage)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.policy.Interval):
		}
	}
	return nil, fmt.Errorf("text detection timed out after %d polls", e.policy.MaxAttempts)
}

func (e *Extractor) cleanup(key string) {
	// Detached context: cleanup must run even when the caller's ctx is done.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.storage.Delete(ctx, e.bucket, key); err != nil {
		log.Printf("extract.Extractor: failed to delete staged object %s: %v", key, err)
	}
}

// assemble groups line blocks by page number and produces contiguous pages
// 1..max(observed page). Pages with no lines come out empty, not missing.
func assemble(blocks []port.TextBlock) *Extraction {
	byPage := make(map[int][]string)
	maxPage := 0
	for _, b := range blocks {
		if b.Type != port.BlockTypeLine || b.Page < 1 {
			continue
		}
		byPage[b.Page] = append(byPage[b.Page], b.Text)
		if b.Page > maxPage {
			maxPage = b.Page
		}
	}

	out := &Extraction{TotalPages: maxPage}
	var full strings.Builder
	for p := 1; p <= maxPage; p++ {
		raw := strings.Join(byPage[p], "\n")
		out.Pages = append(out.Pages, domain.PageContent{
			PageNumber: p,
			Text:       normalize(raw),
			RawText:    raw,
		})
		if full.Len() > 0 {
			full.WriteString("\n\n")
		}
		full.WriteString(raw)
	}
	out.FullText = full.String()
	return out
}

// normalize collapses runs of whitespace to single spaces and trims.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
