package extract

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonhblau/patent-detector/internal/port"
)

type fakeStorage struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, input.Key)
	return &port.UploadOutput{Location: "s3://" + input.Bucket + "/" + input.Key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, _, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return f.deleteErr
}

type fakeDetector struct {
	startErr error
	// polls are returned in order for empty-token calls; continuations are
	// served from the continuations map keyed by token.
	polls         []*port.JobPoll
	continuations map[string]*port.JobPoll
	pollCount     int
}

func (f *fakeDetector) StartJob(_ context.Context, _, _ string) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "job-1", nil
}

func (f *fakeDetector) Poll(_ context.Context, _, nextToken string) (*port.JobPoll, error) {
	if nextToken != "" {
		poll, ok := f.continuations[nextToken]
		if !ok {
			return nil, errors.New("unknown continuation token")
		}
		return poll, nil
	}
	if f.pollCount >= len(f.polls) {
		return f.polls[len(f.polls)-1], nil
	}
	poll := f.polls[f.pollCount]
	f.pollCount++
	return poll, nil
}

func newTestExtractor(storage *fakeStorage, detector *fakeDetector, maxPolls int) *Extractor {
	return &Extractor{
		storage:       storage,
		detector:      detector,
		bucket:        "test-bucket",
		stagingPrefix: "staging",
		policy:        PollPolicy{Interval: time.Millisecond, MaxAttempts: maxPolls},
	}
}

func lineBlock(page int, text string) port.TextBlock {
	return port.TextBlock{Type: port.BlockTypeLine, Page: page, Text: text}
}

func TestExtract_PagesContiguousWithGapFilled(t *testing.T) {
	storage := &fakeStorage{}
	detector := &fakeDetector{
		polls: []*port.JobPoll{{
			Status: port.JobStatusSucceeded,
			Blocks: []port.TextBlock{
				lineBlock(1, "Hello"),
				lineBlock(1, "World"),
				lineBlock(3, "End"),
			},
		}},
	}

	result, err := newTestExtractor(storage, detector, 60).Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Pages, 3)
	for i, p := range result.Pages {
		assert.Equal(t, i+1, p.PageNumber)
	}
	assert.Equal(t, "Hello World", result.Pages[0].Text)
	assert.Equal(t, "Hello\nWorld", result.Pages[0].RawText)
	assert.Equal(t, "", result.Pages[1].Text)
	assert.Equal(t, "End", result.Pages[2].Text)
}

func TestExtract_AccumulatesContinuationTokens(t *testing.T) {
	storage := &fakeStorage{}
	detector := &fakeDetector{
		polls: []*port.JobPoll{{
			Status:    port.JobStatusSucceeded,
			Blocks:    []port.TextBlock{lineBlock(1, "first")},
			NextToken: "t1",
		}},
		continuations: map[string]*port.JobPoll{
			"t1": {
				Status:    port.JobStatusSucceeded,
				Blocks:    []port.TextBlock{lineBlock(2, "second")},
				NextToken: "t2",
			},
			"t2": {
				Status: port.JobStatusSucceeded,
				Blocks: []port.TextBlock{lineBlock(3, "third")},
			},
		},
	}

	result, err := newTestExtractor(storage, detector, 60).Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, "second", result.Pages[1].Text)
	assert.Equal(t, "third", result.Pages[2].Text)
}

func TestExtract_WaitsThroughInProgressPolls(t *testing.T) {
	storage := &fakeStorage{}
	detector := &fakeDetector{
		polls: []*port.JobPoll{
			{Status: port.JobStatusInProgress},
			{Status: port.JobStatusInProgress},
			{Status: port.JobStatusSucceeded, Blocks: []port.TextBlock{lineBlock(1, "done")}},
		},
	}

	result, err := newTestExtractor(storage, detector, 60).Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPages)
	assert.Equal(t, 3, detector.pollCount)
}

func TestExtract_JobFailureCarriesProviderMessage(t *testing.T) {
	storage := &fakeStorage{}
	detector := &fakeDetector{
		polls: []*port.JobPoll{{Status: port.JobStatusFailed, StatusMessage: "unsupported document"}},
	}

	_, err := newTestExtractor(storage, detector, 60).Extract(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document")
	// Staged object is cleaned up even on failure.
	assert.Len(t, storage.deletes, 1)
	assert.Equal(t, storage.uploads, storage.deletes)
}

func TestExtract_PollCeilingYieldsTimeout(t *testing.T) {
	storage := &fakeStorage{}
	detector := &fakeDetector{
		polls: []*port.JobPoll{{Status: port.JobStatusInProgress}},
	}

	_, err := newTestExtractor(storage, detector, 3).Extract(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 3 polls")
	assert.Len(t, storage.deletes, 1)
}

func TestExtract_CleanupFailureDoesNotMaskResult(t *testing.T) {
	storage := &fakeStorage{deleteErr: errors.New("delete denied")}
	detector := &fakeDetector{
		polls: []*port.JobPoll{{
			Status: port.JobStatusSucceeded,
			Blocks: []port.TextBlock{lineBlock(1, "ok")},
		}},
	}

	result, err := newTestExtractor(storage, detector, 60).Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPages)
}

func TestExtract_IgnoresNonLineBlocks(t *testing.T) {
	storage := &fakeStorage{}
	detector := &fakeDetector{
		polls: []*port.JobPoll{{
			Status: port.JobStatusSucceeded,
			Blocks: []port.TextBlock{
				{Type: "PAGE", Page: 1, Text: ""},
				{Type: "WORD", Page: 1, Text: "Hello"},
				lineBlock(1, "Hello"),
			},
		}},
	}

	result, err := newTestExtractor(storage, detector, 60).Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalPages)
	assert.Equal(t, "Hello", result.Pages[0].Text)
}
