package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/port"
)

type claimRepo struct {
	db *sqlx.DB
}

// NewClaimRepo creates a new PostgreSQL-backed ClaimRepository.
func NewClaimRepo(db *sqlx.DB) port.ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) CreateBatch(ctx context.Context, claims []domain.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range claims {
		claims[i].ID = uuid.New()
		claims[i].CreatedAt = now
	}

	query := `INSERT INTO claims (id, patent_id, number, claim_type, text, confidence, created_at)
		VALUES (:id, :patent_id, :number, :claim_type, :text, :confidence, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, claims); err != nil {
		return fmt.Errorf("claimRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *claimRepo) ListByPatent(ctx context.Context, patentID uuid.UUID) ([]domain.Claim, error) {
	claims := []domain.Claim{}
	err := r.db.SelectContext(ctx, &claims,
		"SELECT * FROM claims WHERE patent_id = $1 ORDER BY number", patentID)
	if err != nil {
		return nil, fmt.Errorf("claimRepo.ListByPatent: %w", err)
	}
	return claims, nil
}

func (r *claimRepo) DeleteByPatent(ctx context.Context, patentID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM claims WHERE patent_id = $1", patentID); err != nil {
		return fmt.Errorf("claimRepo.DeleteByPatent: %w", err)
	}
	return nil
}
