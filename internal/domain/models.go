package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Company is the portfolio owner under surveillance management. Its
// PortfolioSummary feeds the infringement scoring prompt verbatim.
type Company struct {
	ID               uuid.UUID `db:"id" json:"id"`
	OwnerID          uuid.UUID `db:"owner_id" json:"owner_id"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	PortfolioSummary string    `db:"portfolio_summary" json:"portfolio_summary"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Patent is a persisted patent belonging to a company's portfolio.
type Patent struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	CompanyID         uuid.UUID   `db:"company_id" json:"company_id"`
	ApplicationNumber string      `db:"application_number" json:"application_number"`
	PatentNumber      string      `db:"patent_number" json:"patent_number"`
	PublicationNumber string      `db:"publication_number" json:"publication_number"`
	Title             string      `db:"title" json:"title"`
	FilingDate        string      `db:"filing_date" json:"filing_date"`
	GrantDate         string      `db:"grant_date" json:"grant_date"`
	Applicants        StringSlice `db:"applicants" json:"applicants"`
	Inventors         StringSlice `db:"inventors" json:"inventors"`
	Abstract          string      `db:"abstract" json:"abstract"`
	Description       string      `db:"description" json:"description"`
	TotalPages        int         `db:"total_pages" json:"total_pages"`
	ExtractedText     string      `db:"extracted_text" json:"extracted_text"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// Claim is a single patent claim with its heuristic dependency classification.
// Confidence qualifies the classification, not the claim text.
type Claim struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatentID   uuid.UUID `db:"patent_id" json:"patent_id"`
	Number     int       `db:"number" json:"number"`
	ClaimType  ClaimType `db:"claim_type" json:"claim_type"`
	Text       string    `db:"text" json:"text"`
	Confidence float64   `db:"confidence" json:"confidence"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Competitor is a company being monitored for potential infringement.
// NormalizedName (lower-cased, trimmed) is the uniqueness key within a
// company, so repeated research runs merge instead of accumulating duplicates.
type Competitor struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	CompanyID        uuid.UUID      `db:"company_id" json:"company_id"`
	Name             string         `db:"name" json:"name"`
	NormalizedName   string         `db:"normalized_name" json:"normalized_name"`
	Website          string         `db:"website" json:"website"`
	Description      string         `db:"description" json:"description"`
	Aliases          StringSlice    `db:"aliases" json:"aliases"`
	TechStack        StringSlice    `db:"tech_stack" json:"tech_stack"`
	ResearchStatus   ResearchStatus `db:"research_status" json:"research_status"`
	ResearchAttempts int            `db:"research_attempts" json:"research_attempts"`
	LastError        string         `db:"last_error" json:"last_error"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// CompetitorDocument is one piece of evidence gathered for a competitor:
// a product page, a fetched PDF, or a discovered patent.
type CompetitorDocument struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	CompetitorID  uuid.UUID      `db:"competitor_id" json:"competitor_id"`
	SourceURL     string         `db:"source_url" json:"source_url"`
	DocumentName  string         `db:"document_name" json:"document_name"`
	DocumentType  DocumentType   `db:"document_type" json:"document_type"`
	TotalPages    int            `db:"total_pages" json:"total_pages"`
	ExtractedText string         `db:"extracted_text" json:"extracted_text"`
	Status        DocumentStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Analysis is the one-per-competitor cached scoring result. Re-analysis
// overwrites it wholesale; no history is retained.
type Analysis struct {
	ID                    uuid.UUID       `db:"id" json:"id"`
	CompetitorID          uuid.UUID       `db:"competitor_id" json:"competitor_id"`
	SettlementProbability int             `db:"settlement_probability" json:"settlement_probability"`
	CompanyRisk           RiskLevel       `db:"company_risk" json:"company_risk"`
	SettlementFactors     json.RawMessage `db:"settlement_factors" json:"settlement_factors"`
	Products              json.RawMessage `db:"products" json:"products"`
	MaxInfringement       int             `db:"max_infringement" json:"max_infringement"`
	MeanInfringement      int             `db:"mean_infringement" json:"mean_infringement"`
	AnalyzedAt            time.Time       `db:"analyzed_at" json:"analyzed_at"`
}

// SettlementFactor is one scored factor inside Analysis.SettlementFactors.
type SettlementFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"` // positive | negative | neutral
	Detail string `json:"detail"`
}

// AnalysisProduct is one product judgment inside Analysis.Products.
type AnalysisProduct struct {
	Name                    string   `json:"name"`
	InfringementProbability int      `json:"infringement_probability"`
	RelevantPatents         []string `json:"relevant_patents"`
	Reasoning               string   `json:"reasoning"`
}

// PageContent is one physical page of OCR output. Pages are 1-indexed and
// contiguous; immutable once produced.
type PageContent struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	RawText    string `json:"raw_text"`
}

// PatentRecord is a normalized patent registry search result. Identity is the
// digits-only ApplicationNumber; PatentNumber/PublicationNumber may be filled
// in lazily by a resolver call.
type PatentRecord struct {
	ApplicationNumber string   `json:"application_number"`
	PatentNumber      string   `json:"patent_number,omitempty"`
	PublicationNumber string   `json:"publication_number,omitempty"`
	Title             string   `json:"title,omitempty"`
	FilingDate        string   `json:"filing_date,omitempty"`
	GrantDate         string   `json:"grant_date,omitempty"`
	Applicants        []string `json:"applicants,omitempty"`
	Inventors         []string `json:"inventors,omitempty"`
	Abstract          string   `json:"abstract,omitempty"`
}

// Resolvable reports whether the record carries the application number that
// downstream lookups key on.
func (r *PatentRecord) Resolvable() bool {
	return r.ApplicationNumber != ""
}

// ClampScore forces a probability into [0,100]. Out-of-range model output is
// clamped, never passed through.
func ClampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// StringSlice is a []string stored as a JSONB column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("marshaling string slice: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", src)
	}
	return json.Unmarshal(b, (*[]string)(s))
}
