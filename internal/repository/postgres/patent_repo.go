package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

type patentRepo struct {
	db *sqlx.DB
}

// NewPatentRepo creates a new PostgreSQL-backed PatentRepository.
func NewPatentRepo(db *sqlx.DB) port.PatentRepository {
	return &patentRepo{db: db}
}

func (r *patentRepo) Create(ctx context.Context, patent *domain.Patent) error {
	patent.ID = uuid.New()
	now := time.Now().UTC()
	patent.CreatedAt = now
	patent.UpdatedAt = now

	query := `INSERT INTO patents (id, company_id, application_number, patent_number,
		publication_number, title, filing_date, grant_date, applicants, inventors,
		abstract, description, total_pages, extracted_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		patent.ID, patent.CompanyID, patent.ApplicationNumber, patent.PatentNumber,
		patent.PublicationNumber, patent.Title, patent.FilingDate, patent.GrantDate,
		patent.Applicants, patent.Inventors, patent.Abstract, patent.Description,
		patent.TotalPages, patent.ExtractedText, patent.CreatedAt, patent.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicatePatent
		}
		return fmt.Errorf("patentRepo.Create: %w", err)
	}
	return nil
}

func (r *patentRepo) GetByID(ctx context.Context, companyID, patentID uuid.UUID) (*domain.Patent, error) {
	var patent domain.Patent
	err := r.db.GetContext(ctx, &patent,
		"SELECT * FROM patents WHERE id = $1 AND company_id = $2", patentID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("patentRepo.GetByID: %w", err)
	}
	return &patent, nil
}

func (r *patentRepo) GetByApplicationNumber(ctx context.Context, companyID uuid.UUID, appNo string) (*domain.Patent, error) {
	var patent domain.Patent
	err := r.db.GetContext(ctx, &patent,
		"SELECT * FROM patents WHERE company_id = $1 AND application_number = $2", companyID, appNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("patentRepo.GetByApplicationNumber: %w", err)
	}
	return &patent, nil
}

func (r *patentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Patent, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM patents WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("patentRepo.ListByCompany: count: %w", err)
	}

	patents := []domain.Patent{}
	err = r.db.SelectContext(ctx, &patents,
		`SELECT * FROM patents WHERE company_id = $1
		ORDER BY created_at DESC OFFSET $2 LIMIT $3`, companyID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("patentRepo.ListByCompany: %w", err)
	}
	return patents, total, nil
}

func (r *patentRepo) Update(ctx context.Context, patent *domain.Patent) error {
	patent.UpdatedAt = time.Now().UTC()

	query := `UPDATE patents SET patent_number = $1, publication_number = $2, title = $3,
		filing_date = $4, grant_date = $5, applicants = $6, inventors = $7, abstract = $8,
		description = $9, total_pages = $10, extracted_text = $11, updated_at = $12
		WHERE id = $13 AND company_id = $14`

	res, err := r.db.ExecContext(ctx, query,
		patent.PatentNumber, patent.PublicationNumber, patent.Title,
		patent.FilingDate, patent.GrantDate, patent.Applicants, patent.Inventors,
		patent.Abstract, patent.Description, patent.TotalPages, patent.ExtractedText,
		patent.UpdatedAt, patent.ID, patent.CompanyID)
	if err != nil {
		return fmt.Errorf("patentRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *patentRepo) Delete(ctx context.Context, companyID, patentID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM patents WHERE id = $1 AND company_id = $2", patentID, companyID)
	if err != nil {
		return fmt.Errorf("patentRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
