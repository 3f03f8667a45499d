package repository

import (
	"context"
	"fmt"

	"medintake-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExtractionRepository handles database operations for extraction runs
type ExtractionRepository struct {
	db *pgxpool.Pool
}

// NewExtractionRepository creates a new extraction repository
func NewExtractionRepository(db *pgxpool.Pool) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// Create creates a new extraction record
func (r *ExtractionRepository) Create(ctx context.Context, extraction *models.ExtractionRecord) error {
	query := `
		INSERT INTO extractions (
			id, document_id, language, ocr_characters, result, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		extraction.ID,
		extraction.DocumentID,
		extraction.Language,
		extraction.OCRCharacters,
		extraction.Result,
		extraction.Status,
		extraction.ErrorMessage,
	).Scan(&extraction.CreatedAt)

	return err
}

// GetByID retrieves an extraction by ID
func (r *ExtractionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExtractionRecord, error) {
	extraction := &models.ExtractionRecord{}
	query := `
		SELECT id, document_id, language, ocr_characters, result, status, error_message, created_at
		FROM extractions
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&extraction.ID,
		&extraction.DocumentID,
		&extraction.Language,
		&extraction.OCRCharacters,
		&extraction.Result,
		&extraction.Status,
		&extraction.ErrorMessage,
		&extraction.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return extraction, nil
}

// List retrieves extraction runs, newest first, optionally filtered by status
func (r *ExtractionRepository) List(ctx context.Context, status models.ExtractionStatus, limit, offset int) ([]*models.ExtractionRecord, error) {
	query := `
		SELECT id, document_id, language, ocr_characters, result, status, error_message, created_at
		FROM extractions`

	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extractions []*models.ExtractionRecord
	for rows.Next() {
		extraction := &models.ExtractionRecord{}
		err := rows.Scan(
			&extraction.ID,
			&extraction.DocumentID,
			&extraction.Language,
			&extraction.OCRCharacters,
			&extraction.Result,
			&extraction.Status,
			&extraction.ErrorMessage,
			&extraction.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		extractions = append(extractions, extraction)
	}

	return extractions, rows.Err()
}

// ListByDocumentID retrieves all extraction runs for one document
func (r *ExtractionRepository) ListByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.ExtractionRecord, error) {
	query := `
		SELECT id, document_id, language, ocr_characters, result, status, error_message, created_at
		FROM extractions
		WHERE document_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extractions []*models.ExtractionRecord
	for rows.Next() {
		extraction := &models.ExtractionRecord{}
		err := rows.Scan(
			&extraction.ID,
			&extraction.DocumentID,
			&extraction.Language,
			&extraction.OCRCharacters,
			&extraction.Result,
			&extraction.Status,
			&extraction.ErrorMessage,
			&extraction.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		extractions = append(extractions, extraction)
	}

	return extractions, rows.Err()
}
