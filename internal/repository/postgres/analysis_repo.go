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

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

// Upsert writes the one analysis row per competitor, overwriting any previous
// result wholesale.
func (r *analysisRepo) Upsert(ctx context.Context, analysis *domain.Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = time.Now().UTC()
	}

	query := `INSERT INTO analyses (id, competitor_id, settlement_probability, company_risk,
		settlement_factors, products, max_infringement, mean_infringement, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (competitor_id) DO UPDATE SET
			settlement_probability = EXCLUDED.settlement_probability,
			company_risk = EXCLUDED.company_risk,
			settlement_factors = EXCLUDED.settlement_factors,
			products = EXCLUDED.products,
			max_infringement = EXCLUDED.max_infringement,
			mean_infringement = EXCLUDED.mean_infringement,
			analyzed_at = EXCLUDED.analyzed_at`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID, analysis.CompetitorID, analysis.SettlementProbability,
		analysis.CompanyRisk, analysis.SettlementFactors, analysis.Products,
		analysis.MaxInfringement, analysis.MeanInfringement, analysis.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Upsert: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByCompetitor(ctx context.Context, competitorID uuid.UUID) (*domain.Analysis, error) {
	var analysis domain.Analysis
	err := r.db.GetContext(ctx, &analysis,
		"SELECT * FROM analyses WHERE competitor_id = $1", competitorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByCompetitor: %w", err)
	}
	return &analysis, nil
}

func (r *analysisRepo) Delete(ctx context.Context, competitorID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM analyses WHERE competitor_id = $1", competitorID)
	if err != nil {
		return fmt.Errorf("analysisRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
