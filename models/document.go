package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded intake form kept in archive storage
type Document struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
