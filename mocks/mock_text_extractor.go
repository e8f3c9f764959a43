package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/extract"
)

// MockTextExtractor is a mock implementation of service.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, doc []byte) (*extract.Extraction, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Extraction), args.Error(1)
}
