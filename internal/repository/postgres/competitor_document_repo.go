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

type competitorDocumentRepo struct {
	db *sqlx.DB
}

// NewCompetitorDocumentRepo creates a new PostgreSQL-backed CompetitorDocumentRepository.
func NewCompetitorDocumentRepo(db *sqlx.DB) port.CompetitorDocumentRepository {
	return &competitorDocumentRepo{db: db}
}

// Upsert inserts a document or merges it into the existing row with the same
// (competitor_id, document_name). Merging only moves status forward: a row
// that already reached a richer state keeps it, and content fields are only
// overwritten when the incoming document actually carries content.
func (r *competitorDocumentRepo) Upsert(ctx context.Context, doc *domain.CompetitorDocument) error {
	existing, err := r.getByName(ctx, doc.CompetitorID, doc.DocumentName)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("competitorDocumentRepo.Upsert: %w", err)
	}

	now := time.Now().UTC()

	if existing == nil {
		doc.ID = uuid.New()
		doc.CreatedAt = now
		doc.UpdatedAt = now

		query := `INSERT INTO competitor_documents (id, competitor_id, source_url,
			document_name, document_type, total_pages, extracted_text, status,
			created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := r.db.ExecContext(ctx, query,
			doc.ID, doc.CompetitorID, doc.SourceURL, doc.DocumentName, doc.DocumentType,
			doc.TotalPages, doc.ExtractedText, doc.Status, doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("competitorDocumentRepo.Upsert: insert: %w", err)
		}
		return nil
	}

	if !domain.CanTransition(existing.Status, doc.Status) {
		return domain.ErrStatusRegression
	}

	merged := *existing
	merged.Status = doc.Status
	merged.UpdatedAt = now
	if doc.SourceURL != "" {
		merged.SourceURL = doc.SourceURL
	}
	if doc.ExtractedText != "" {
		merged.ExtractedText = doc.ExtractedText
	}
	if doc.TotalPages > 0 {
		merged.TotalPages = doc.TotalPages
	}
	if doc.DocumentType != "" {
		merged.DocumentType = doc.DocumentType
	}

	query := `UPDATE competitor_documents SET source_url = $1, document_type = $2,
		total_pages = $3, extracted_text = $4, status = $5, updated_at = $6
		WHERE id = $7`

	_, err = r.db.ExecContext(ctx, query,
		merged.SourceURL, merged.DocumentType, merged.TotalPages,
		merged.ExtractedText, merged.Status, merged.UpdatedAt, merged.ID)
	if err != nil {
		return fmt.Errorf("competitorDocumentRepo.Upsert: update: %w", err)
	}
	*doc = merged
	return nil
}

func (r *competitorDocumentRepo) getByName(ctx context.Context, competitorID uuid.UUID, name string) (*domain.CompetitorDocument, error) {
	var doc domain.CompetitorDocument
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM competitor_documents WHERE competitor_id = $1 AND document_name = $2",
		competitorID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *competitorDocumentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.CompetitorDocument, error) {
	var doc domain.CompetitorDocument
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM competitor_documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("competitorDocumentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *competitorDocumentRepo) ListByCompetitor(ctx context.Context, competitorID uuid.UUID) ([]domain.CompetitorDocument, error) {
	docs := []domain.CompetitorDocument{}
	err := r.db.SelectContext(ctx, &docs,
		`SELECT * FROM competitor_documents WHERE competitor_id = $1
		ORDER BY document_type, document_name`, competitorID)
	if err != nil {
		return nil, fmt.Errorf("competitorDocumentRepo.ListByCompetitor: %w", err)
	}
	return docs, nil
}

func (r *competitorDocumentRepo) CountByCompetitor(ctx context.Context, competitorID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM competitor_documents WHERE competitor_id = $1", competitorID)
	if err != nil {
		return 0, fmt.Errorf("competitorDocumentRepo.CountByCompetitor: %w", err)
	}
	return count, nil
}

func (r *competitorDocumentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM competitor_documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("competitorDocumentRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
