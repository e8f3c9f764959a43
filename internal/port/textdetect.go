package port

import "context"

// Block statuses reported by the text-detection provider.
const (
	JobStatusInProgress = "IN_PROGRESS"
	JobStatusSucceeded  = "SUCCEEDED"
	JobStatusFailed     = "FAILED"
)

// BlockTypeLine identifies line-level text blocks; all other block types are
// ignored during page assembly.
const BlockTypeLine = "LINE"

// TextBlock is one recognized text block with its page attribution.
type TextBlock struct {
	Type string
	Page int
	Text string
}

// JobPoll is one page of an asynchronous text-detection job's results.
type JobPoll struct {
	Status        string
	StatusMessage string
	Blocks        []TextBlock
	NextToken     string
}

// TextDetector abstracts an asynchronous OCR text-detection service that
// reads its input from object storage.
type TextDetector interface {
	StartJob(ctx context.Context, bucket, key string) (jobID string, err error)
	Poll(ctx context.Context, jobID, nextToken string) (*JobPoll, error)
}
