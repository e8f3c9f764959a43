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

type competitorRepo struct {
	db *sqlx.DB
}

// NewCompetitorRepo creates a new PostgreSQL-backed CompetitorRepository.
func NewCompetitorRepo(db *sqlx.DB) port.CompetitorRepository {
	return &competitorRepo{db: db}
}

func (r *competitorRepo) Create(ctx context.Context, competitor *domain.Competitor) error {
	competitor.ID = uuid.New()
	now := time.Now().UTC()
	competitor.CreatedAt = now
	competitor.UpdatedAt = now
	if competitor.ResearchStatus == "" {
		competitor.ResearchStatus = domain.ResearchIdle
	}

	query := `INSERT INTO competitors (id, company_id, name, normalized_name, website,
		description, aliases, tech_stack, research_status, research_attempts, last_error,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		competitor.ID, competitor.CompanyID, competitor.Name, competitor.NormalizedName,
		competitor.Website, competitor.Description, competitor.Aliases, competitor.TechStack,
		competitor.ResearchStatus, competitor.ResearchAttempts, competitor.LastError,
		competitor.CreatedAt, competitor.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateCompetitor
		}
		return fmt.Errorf("competitorRepo.Create: %w", err)
	}
	return nil
}

func (r *competitorRepo) GetByID(ctx context.Context, competitorID uuid.UUID) (*domain.Competitor, error) {
	var competitor domain.Competitor
	err := r.db.GetContext(ctx, &competitor,
		"SELECT * FROM competitors WHERE id = $1", competitorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("competitorRepo.GetByID: %w", err)
	}
	return &competitor, nil
}

func (r *competitorRepo) GetByNormalizedName(ctx context.Context, companyID uuid.UUID, normalizedName string) (*domain.Competitor, error) {
	var competitor domain.Competitor
	err := r.db.GetContext(ctx, &competitor,
		"SELECT * FROM competitors WHERE company_id = $1 AND normalized_name = $2",
		companyID, normalizedName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("competitorRepo.GetByNormalizedName: %w", err)
	}
	return &competitor, nil
}

func (r *competitorRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]domain.Competitor, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM competitors WHERE company_id = $1", companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("competitorRepo.ListByCompany: count: %w", err)
	}

	competitors := []domain.Competitor{}
	err = r.db.SelectContext(ctx, &competitors,
		`SELECT * FROM competitors WHERE company_id = $1
		ORDER BY created_at DESC OFFSET $2 LIMIT $3`, companyID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("competitorRepo.ListByCompany: %w", err)
	}
	return competitors, total, nil
}

func (r *competitorRepo) Update(ctx context.Context, competitor *domain.Competitor) error {
	competitor.UpdatedAt = time.Now().UTC()

	query := `UPDATE competitors SET name = $1, normalized_name = $2, website = $3,
		description = $4, aliases = $5, tech_stack = $6, updated_at = $7
		WHERE id = $8`

	res, err := r.db.ExecContext(ctx, query,
		competitor.Name, competitor.NormalizedName, competitor.Website,
		competitor.Description, competitor.Aliases, competitor.TechStack,
		competitor.UpdatedAt, competitor.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateCompetitor
		}
		return fmt.Errorf("competitorRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *competitorRepo) UpdateResearchStatus(ctx context.Context, competitorID uuid.UUID, status domain.ResearchStatus, lastError string) error {
	query := `UPDATE competitors SET research_status = $1, last_error = $2, updated_at = $3
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, status, lastError, time.Now().UTC(), competitorID)
	if err != nil {
		return fmt.Errorf("competitorRepo.UpdateResearchStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimQueued atomically moves up to limit queued competitors to running and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// rows.
func (r *competitorRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Competitor, error) {
	query := `UPDATE competitors SET research_status = 'running',
		research_attempts = research_attempts + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM competitors
			WHERE research_status = 'queued'
			ORDER BY updated_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	competitors := []domain.Competitor{}
	if err := r.db.SelectContext(ctx, &competitors, query, limit); err != nil {
		return nil, fmt.Errorf("competitorRepo.ClaimQueued: %w", err)
	}
	return competitors, nil
}

func (r *competitorRepo) Delete(ctx context.Context, companyID, competitorID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM competitors WHERE id = $1 AND company_id = $2", competitorID, companyID)
	if err != nil {
		return fmt.Errorf("competitorRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
