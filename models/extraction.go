package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionStatus represents the outcome of an extraction run
type ExtractionStatus string

const (
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFailed    ExtractionStatus = "failed"
)

// ExtractionRecord represents one persisted extraction run over a document
type ExtractionRecord struct {
	ID            uuid.UUID        `json:"id"`
	DocumentID    uuid.UUID        `json:"document_id"`
	Language      string           `json:"language"`
	OCRCharacters int              `json:"ocr_characters"`
	Result        ValidationResult `json:"result"`
	Status        ExtractionStatus `json:"status"`
	ErrorMessage  *string          `json:"error_message,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
