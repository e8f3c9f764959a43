package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/extract"
	"github.com/jacksonhblau/patent-detector/internal/port"
	"github.com/jacksonhblau/patent-detector/internal/service"
	"github.com/jacksonhblau/patent-detector/mocks"
)

const structuredResponse = `{
  "title": "Optical relay assembly",
  "application_number": "16/123,456",
  "patent_number": "11223344",
  "publication_number": "US20200123456A1",
  "filing_date": "2018-09-05",
  "grant_date": "2021-03-16",
  "applicants": ["Meridian Optics LLC"],
  "inventors": ["Ada Voss"],
  "abstract": "An optical relay assembly with a tunable mirror.",
  "claims": [
    {"number": 1, "claim_type": "independent", "text": "An optical relay assembly comprising a mirror."},
    {"number": 2, "claim_type": "dependent", "text": "The assembly of claim 1 wherein the mirror is tunable."},
    {"number": 3, "claim_type": "dependent", "text": "   "}
  ]
}`

type patentServiceFixture struct {
	svc         service.PatentService
	patentRepo  *mocks.MockPatentRepo
	claimRepo   *mocks.MockClaimRepo
	companyRepo *mocks.MockCompanyRepo
	extractor   *mocks.MockTextExtractor
	completer   *mocks.MockCompleter
	ownerID     uuid.UUID
	companyID   uuid.UUID
}

func newPatentFixture(t *testing.T) *patentServiceFixture {
	t.Helper()
	f := &patentServiceFixture{
		patentRepo:  new(mocks.MockPatentRepo),
		claimRepo:   new(mocks.MockClaimRepo),
		companyRepo: new(mocks.MockCompanyRepo),
		extractor:   new(mocks.MockTextExtractor),
		completer:   new(mocks.MockCompleter),
		ownerID:     uuid.New(),
		companyID:   uuid.New(),
	}
	f.svc = service.NewPatentService(f.patentRepo, f.claimRepo, f.companyRepo, f.extractor, f.completer, 1)
	f.companyRepo.On("GetByID", mock.Anything, f.ownerID, f.companyID).
		Return(&domain.Company{ID: f.companyID, OwnerID: f.ownerID}, nil)
	return f
}

func TestPatentService_Upload_Success(t *testing.T) {
	f := newPatentFixture(t)

	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(&extract.Extraction{
			TotalPages: 12,
			FullText:   "UNITED STATES PATENT Optical relay assembly ...",
		}, nil)
	f.completer.On("Complete", mock.Anything, mock.AnythingOfType("port.CompletionRequest")).
		Return(structuredResponse, nil)
	f.patentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Patent")).Return(nil)
	f.claimRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.Claim")).Return(nil)

	result, err := f.svc.Upload(context.Background(), f.ownerID, f.companyID, "relay.pdf", []byte("%PDF-1.4"))

	assert.NoError(t, err)
	assert.Equal(t, "Optical relay assembly", result.Patent.Title)
	assert.Equal(t, "16123456", result.Patent.ApplicationNumber)
	assert.Equal(t, "11223344", result.Patent.PatentNumber)
	assert.Equal(t, 12, result.Patent.TotalPages)
	assert.NotEmpty(t, result.Patent.ExtractedText)

	// Blank claim text is dropped.
	assert.Len(t, result.Claims, 2)
	assert.Equal(t, domain.ClaimIndependent, result.Claims[0].ClaimType)
	assert.Equal(t, domain.ClaimDependent, result.Claims[1].ClaimType)
	assert.InDelta(t, 0.85, result.Claims[0].Confidence, 0.001)

	// The structuring prompt must not request the web-search tool.
	req := f.completer.Calls[0].Arguments.Get(1).(port.CompletionRequest)
	assert.False(t, req.UseWebSearch)
}

func TestPatentService_Upload_RejectsNonPDF(t *testing.T) {
	f := newPatentFixture(t)

	_, err := f.svc.Upload(context.Background(), f.ownerID, f.companyID, "notes.docx", []byte("data"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestPatentService_Upload_RejectsOversizedFile(t *testing.T) {
	f := newPatentFixture(t)

	big := make([]byte, 2*1024*1024) // fixture cap is 1 MB
	_, err := f.svc.Upload(context.Background(), f.ownerID, f.companyID, "big.pdf", big)

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestPatentService_Upload_BadStructuringJSONFails(t *testing.T) {
	f := newPatentFixture(t)

	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(&extract.Extraction{TotalPages: 3, FullText: "text"}, nil)
	f.completer.On("Complete", mock.Anything, mock.AnythingOfType("port.CompletionRequest")).
		Return("I could not find any patent data in this document.", nil)

	_, err := f.svc.Upload(context.Background(), f.ownerID, f.companyID, "scan.pdf", []byte("%PDF-1.4"))

	assert.Error(t, err)
	f.patentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPatentService_Upload_DuplicateApplicationNumber(t *testing.T) {
	f := newPatentFixture(t)

	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(&extract.Extraction{TotalPages: 12, FullText: "text"}, nil)
	f.completer.On("Complete", mock.Anything, mock.AnythingOfType("port.CompletionRequest")).
		Return(structuredResponse, nil)
	f.patentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Patent")).
		Return(domain.ErrDuplicatePatent)

	_, err := f.svc.Upload(context.Background(), f.ownerID, f.companyID, "relay.pdf", []byte("%PDF-1.4"))

	assert.ErrorIs(t, err, domain.ErrDuplicatePatent)
	f.claimRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestPatentService_Upload_ClaimPersistFailureKeepsPatent(t *testing.T) {
	f := newPatentFixture(t)

	f.extractor.On("Extract", mock.Anything, mock.Anything).
		Return(&extract.Extraction{TotalPages: 12, FullText: "text"}, nil)
	f.completer.On("Complete", mock.Anything, mock.AnythingOfType("port.CompletionRequest")).
		Return(structuredResponse, nil)
	f.patentRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Patent")).Return(nil)
	f.claimRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.Claim")).
		Return(assert.AnError)

	result, err := f.svc.Upload(context.Background(), f.ownerID, f.companyID, "relay.pdf", []byte("%PDF-1.4"))

	assert.NoError(t, err)
	assert.Empty(t, result.Claims)
	assert.Equal(t, "Optical relay assembly", result.Patent.Title)
}

func TestPatentService_Delete_RemovesClaimsFirst(t *testing.T) {
	f := newPatentFixture(t)

	patentID := uuid.New()
	f.claimRepo.On("DeleteByPatent", mock.Anything, patentID).Return(nil)
	f.patentRepo.On("Delete", mock.Anything, f.companyID, patentID).Return(nil)

	err := f.svc.Delete(context.Background(), f.ownerID, f.companyID, patentID)

	assert.NoError(t, err)
	f.claimRepo.AssertExpectations(t)
	f.patentRepo.AssertExpectations(t)
}
