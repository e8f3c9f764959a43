package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CompanyRepository defines the contract for portfolio company persistence.
// All query methods include ownerID so a user can only see their own company.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, ownerID, companyID uuid.UUID) (*domain.Company, error)
	// Get loads a company without owner scoping, for internal pipeline use.
	Get(ctx context.Context, companyID uuid.UUID) (*domain.Company, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Company, error)
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, ownerID, companyID uuid.UUID) error
}

// PatentRepository defines the contract for portfolio patent persistence.
type PatentRepository interface {
	Create(ctx context.Context, patent *domain.Patent) error
	GetByID(ctx context.Context, companyID, patentID uuid.UUID) (*domain.Patent, error)
	GetByApplicationNumber(ctx context.Context, companyID uuid.UUID, appNo string) (*domain.Patent, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Patent, int, error)
	Update(ctx context.Context, patent *domain.Patent) error
	Delete(ctx context.Context, companyID, patentID uuid.UUID) error
}

// ClaimRepository defines the contract for patent claim persistence.
type ClaimRepository interface {
	CreateBatch(ctx context.Context, claims []domain.Claim) error
	ListByPatent(ctx context.Context, patentID uuid.UUID) ([]domain.Claim, error)
	DeleteByPatent(ctx context.Context, patentID uuid.UUID) error
}

// CompetitorRepository defines the contract for competitor persistence.
type CompetitorRepository interface {
	Create(ctx context.Context, competitor *domain.Competitor) error
	GetByID(ctx context.Context, competitorID uuid.UUID) (*domain.Competitor, error)
	GetByNormalizedName(ctx context.Context, companyID uuid.UUID, normalizedName string) (*domain.Competitor, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Competitor, int, error)
	Update(ctx context.Context, competitor *domain.Competitor) error
	UpdateResearchStatus(ctx context.Context, competitorID uuid.UUID, status domain.ResearchStatus, lastError string) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.Competitor, error)
	Delete(ctx context.Context, companyID, competitorID uuid.UUID) error
}

// CompetitorDocumentRepository defines the contract for competitor document
// persistence. Upsert merges on (competitor_id, document_name) and refuses
// status regressions.
type CompetitorDocumentRepository interface {
	Upsert(ctx context.Context, doc *domain.CompetitorDocument) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.CompetitorDocument, error)
	ListByCompetitor(ctx context.Context, competitorID uuid.UUID) ([]domain.CompetitorDocument, error)
	CountByCompetitor(ctx context.Context, competitorID uuid.UUID) (int, error)
	Delete(ctx context.Context, docID uuid.UUID) error
}

// AnalysisRepository defines the contract for analysis persistence. One row
// per competitor; Upsert overwrites wholesale.
type AnalysisRepository interface {
	Upsert(ctx context.Context, analysis *domain.Analysis) error
	GetByCompetitor(ctx context.Context, competitorID uuid.UUID) (*domain.Analysis, error)
	Delete(ctx context.Context, competitorID uuid.UUID) error
}
