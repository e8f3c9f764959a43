package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

type companyRepo struct {
	db *sqlx.DB
}

// NewCompanyRepo creates a new PostgreSQL-backed CompanyRepository.
func NewCompanyRepo(db *sqlx.DB) port.CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *domain.Company) error {
	company.ID = uuid.New()
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := `INSERT INTO companies (id, owner_id, name, description, portfolio_summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		company.ID, company.OwnerID, company.Name, company.Description,
		company.PortfolioSummary, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return fmt.Errorf("companyRepo.Create: %w", err)
	}
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, ownerID, companyID uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.GetContext(ctx, &company,
		"SELECT * FROM companies WHERE id = $1 AND owner_id = $2", companyID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("companyRepo.GetByID: %w", err)
	}
	return &company, nil
}

func (r *companyRepo) Get(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.GetContext(ctx, &company, "SELECT * FROM companies WHERE id = $1", companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("companyRepo.Get: %w", err)
	}
	return &company, nil
}

func (r *companyRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Company, error) {
	companies := []domain.Company{}
	err := r.db.SelectContext(ctx, &companies,
		"SELECT * FROM companies WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("companyRepo.ListByOwner: %w", err)
	}
	return companies, nil
}

func (r *companyRepo) Update(ctx context.Context, company *domain.Company) error {
	company.UpdatedAt = time.Now().UTC()

	query := `UPDATE companies SET name = $1, description = $2, portfolio_summary = $3, updated_at = $4
		WHERE id = $5 AND owner_id = $6`

	res, err := r.db.ExecContext(ctx, query,
		company.Name, company.Description, company.PortfolioSummary,
		company.UpdatedAt, company.ID, company.OwnerID)
	if err != nil {
		return fmt.Errorf("companyRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *companyRepo) Delete(ctx context.Context, ownerID, companyID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM companies WHERE id = $1 AND owner_id = $2", companyID, ownerID)
	if err != nil {
		return fmt.Errorf("companyRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
