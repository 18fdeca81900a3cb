package entity

import (
	"time"

	"github.com/google/uuid"
)

// File represents a stored blob (uploaded source or generated output).
type File struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	Bucket       string    `json:"bucket"`
	StoragePath  string    `json:"storage_path"`
	ContentType  string    `json:"content_type,omitempty"`
	SizeBytes    *int64    `json:"size_bytes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
