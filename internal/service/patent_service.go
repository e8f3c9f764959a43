package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/extract"
	"github.com/jacksonhblau/patent-detector/internal/llm"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

const (
	// structureMaxTokens bounds the claim-structuring completion; a patent
	// with many long claims can produce a large JSON document.
	structureMaxTokens = 8192

	// structuredClaimConfidence is assigned to claim classifications that
	// came from the model rather than the XML heuristic.
	structuredClaimConfidence = 0.85

	// structureTextCap limits how much OCR text goes into the structuring
	// prompt. Front matter and claims live in the first pages.
	structureTextCap = 60000
)

// TextExtractor turns an uploaded PDF into page-level text.
type TextExtractor interface {
	Extract(ctx context.Context, doc []byte) (*extract.Extraction, error)
}

// PatentWithClaims bundles a patent with its stored claims for read paths.
type PatentWithClaims struct {
	Patent domain.Patent  `json:"patent"`
	Claims []domain.Claim `json:"claims"`
}

// PatentService manages the portfolio patent lifecycle.
type PatentService interface {
	Upload(ctx context.Context, ownerID, companyID uuid.UUID, filename string, doc []byte) (*PatentWithClaims, error)
	Get(ctx context.Context, ownerID, companyID, patentID uuid.UUID) (*PatentWithClaims, error)
	List(ctx context.Context, ownerID, companyID uuid.UUID, offset, limit int) ([]domain.Patent, int, error)
	Delete(ctx context.Context, ownerID, companyID, patentID uuid.UUID) error
}

type patentService struct {
	patentRepo  port.PatentRepository
	claimRepo   port.ClaimRepository
	companyRepo port.CompanyRepository
	extractor   TextExtractor
	completer   port.Completer
	maxBytes    int64
}

// NewPatentService creates a new PatentService implementation.
func NewPatentService(
	patentRepo port.PatentRepository,
	claimRepo port.ClaimRepository,
	companyRepo port.CompanyRepository,
	extractor TextExtractor,
	completer port.Completer,
	maxFileSizeMB int64,
) PatentService {
	return &patentService{
		patentRepo:  patentRepo,
		claimRepo:   claimRepo,
		companyRepo: companyRepo,
		extractor:   extractor,
		completer:   completer,
		maxBytes:    maxFileSizeMB * 1024 * 1024,
	}
}

// structuredPatent is the JSON shape the structuring prompt asks for.
type structuredPatent struct {
	Title             string            `json:"title"`
	ApplicationNumber string            `json:"application_number"`
	PatentNumber      string            `json:"patent_number"`
	PublicationNumber string            `json:"publication_number"`
	FilingDate        string            `json:"filing_date"`
	GrantDate         string            `json:"grant_date"`
	Applicants        []string          `json:"applicants"`
	Inventors         []string          `json:"inventors"`
	Abstract          string            `json:"abstract"`
	Claims            []structuredClaim `json:"claims"`
}

type structuredClaim struct {
	Number    int    `json:"number"`
	ClaimType string `json:"claim_type"`
	Text      string `json:"text"`
}

// Upload ingests one patent PDF: OCR the document, structure its front matter
// and claims with a single completion call, then persist the patent and its
// claim rows. Duplicate application numbers within a company are rejected.
func (s *patentService) Upload(ctx context.Context, ownerID, companyID uuid.UUID, filename string, doc []byte) (*PatentWithClaims, error) {
	if _, err := s.companyRepo.GetByID(ctx, ownerID, companyID); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, domain.ErrUnsupportedFileType
	}
	if s.maxBytes > 0 && int64(len(doc)) > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	extraction, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("patent.Upload: %w", err)
	}

	structured, err := s.structure(ctx, extraction.FullText)
	if err != nil {
		return nil, fmt.Errorf("patent.Upload: %w", err)
	}

	patent := &domain.Patent{
		CompanyID:         companyID,
		ApplicationNumber: digitsOnly(structured.ApplicationNumber),
		PatentNumber:      structured.PatentNumber,
		PublicationNumber: structured.PublicationNumber,
		Title:             structured.Title,
		FilingDate:        structured.FilingDate,
		GrantDate:         structured.GrantDate,
		Applicants:        structured.Applicants,
		Inventors:         structured.Inventors,
		Abstract:          structured.Abstract,
		TotalPages:        extraction.TotalPages,
		ExtractedText:     extraction.FullText,
	}
	if patent.Title == "" {
		patent.Title = strings.TrimSuffix(filename, ".pdf")
	}
	if err := s.patentRepo.Create(ctx, patent); err != nil {
		return nil, err
	}

	claims := make([]domain.Claim, 0, len(structured.Claims))
	for _, c := range structured.Claims {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		claims = append(claims, domain.Claim{
			PatentID:   patent.ID,
			Number:     c.Number,
			ClaimType:  claimTypeFromLabel(c.ClaimType),
			Text:       strings.TrimSpace(c.Text),
			Confidence: structuredClaimConfidence,
		})
	}
	if len(claims) > 0 {
		if err := s.claimRepo.CreateBatch(ctx, claims); err != nil {
			// The patent row is already useful without claim rows; keep it.
			log.Printf("patent.Upload: persisting claims for %s: %v", patent.ID, err)
			claims = nil
		}
	}

	return &PatentWithClaims{Patent: *patent, Claims: claims}, nil
}

func (s *patentService) Get(ctx context.Context, ownerID, companyID, patentID uuid.UUID) (*PatentWithClaims, error) {
	if _, err := s.companyRepo.GetByID(ctx, ownerID, companyID); err != nil {
		return nil, err
	}
	patent, err := s.patentRepo.GetByID(ctx, companyID, patentID)
	if err != nil {
		return nil, err
	}
	claims, err := s.claimRepo.ListByPatent(ctx, patentID)
	if err != nil {
		return nil, fmt.Errorf("patent.Get: %w", err)
	}
	return &PatentWithClaims{Patent: *patent, Claims: claims}, nil
}

func (s *patentService) List(ctx context.Context, ownerID, companyID uuid.UUID, offset, limit int) ([]domain.Patent, int, error) {
	if _, err := s.companyRepo.GetByID(ctx, ownerID, companyID); err != nil {
		return nil, 0, err
	}
	return s.patentRepo.ListByCompany(ctx, companyID, offset, limit)
}

func (s *patentService) Delete(ctx context.Context, ownerID, companyID, patentID uuid.UUID) error {
	if _, err := s.companyRepo.GetByID(ctx, ownerID, companyID); err != nil {
		return err
	}
	if err := s.claimRepo.DeleteByPatent(ctx, patentID); err != nil {
		return fmt.Errorf("patent.Delete: %w", err)
	}
	return s.patentRepo.Delete(ctx, companyID, patentID)
}

// structure runs the one completion call that turns raw OCR text into
// bibliographic fields and numbered claims.
func (s *patentService) structure(ctx context.Context, fullText string) (*structuredPatent, error) {
	text := fullText
	if len(text) > structureTextCap {
		text = text[:structureTextCap]
	}

	resp, err := s.completer.Complete(ctx, port.CompletionRequest{
		Prompt:    buildStructurePrompt(text),
		MaxTokens: structureMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("structuring document: %w", err)
	}

	raw, err := llm.ExtractJSON(resp)
	if err != nil {
		return nil, fmt.Errorf("structuring document: %w", err)
	}
	var structured structuredPatent
	if err := json.Unmarshal(raw, &structured); err != nil {
		return nil, fmt.Errorf("structuring document: %w", err)
	}
	return &structured, nil
}

func buildStructurePrompt(text string) string {
	var b strings.Builder
	b.WriteString("You are a patent paralegal. Extract the bibliographic data and the numbered claims from the OCR text of a patent document below.\n\n")
	b.WriteString("Return ONLY a raw JSON object, no markdown fences, with this shape:\n")
	b.WriteString(`{
  "title": "",
  "application_number": "",
  "patent_number": "",
  "publication_number": "",
  "filing_date": "YYYY-MM-DD",
  "grant_date": "YYYY-MM-DD",
  "applicants": [""],
  "inventors": [""],
  "abstract": "",
  "claims": [{"number": 1, "claim_type": "independent|dependent", "text": ""}]
}`)
	b.WriteString("\n\nRules: use empty strings for fields not present in the document. ")
	b.WriteString("A claim is dependent when it refers back to another claim. ")
	b.WriteString("Keep claim text verbatim, including the preamble, but repair obvious OCR artifacts.\n\n")
	b.WriteString("DOCUMENT TEXT:\n")
	b.WriteString(text)
	return b.String()
}

func claimTypeFromLabel(label string) domain.ClaimType {
	if strings.EqualFold(strings.TrimSpace(label), string(domain.ClaimDependent)) {
		return domain.ClaimDependent
	}
	return domain.ClaimIndependent
}

// digitsOnly strips formatting from an application number ("16/123,456" ->
// "16123456") so uploads and registry lookups agree on identity.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
