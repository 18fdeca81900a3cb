package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/constants"
)

// TranslationJob represents a translation job for data transfer between layers.
type TranslationJob struct {
	ID           uuid.UUID           `json:"id"`
	FileID       uuid.UUID           `json:"file_id"`
	OutputFileID *uuid.UUID          `json:"output_file_id,omitempty"`
	Status       constants.JobStatus `json:"status"`
	Progress     int                 `json:"progress"`
	SourceLang   string              `json:"src_lang"`
	TargetLang   string              `json:"tgt_lang"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// JobUpdate is a partial update: nil fields are left untouched.
type JobUpdate struct {
	Status       *constants.JobStatus
	Progress     *int
	ErrorMessage *string
	OutputFileID *uuid.UUID
}

// Empty reports whether the update would change nothing.
func (u JobUpdate) Empty() bool {
	return u.Status == nil && u.Progress == nil && u.ErrorMessage == nil && u.OutputFileID == nil
}

// JobWithFile is a job joined with its originating file.
type JobWithFile struct {
	TranslationJob
	File File `json:"file"`
}

// JobSummary is what the pipeline API reports to callers.
type JobSummary struct {
	JobID        uuid.UUID           `json:"job_id"`
	Status       constants.JobStatus `json:"status"`
	Progress     int                 `json:"progress"`
	OutputFileID *uuid.UUID          `json:"output_file_id"`
	ErrorMessage *string             `json:"error_message,omitempty"`
}

func (j TranslationJob) Summary() JobSummary {
	return JobSummary{
		JobID:        j.ID,
		Status:       j.Status,
		Progress:     j.Progress,
		OutputFileID: j.OutputFileID,
		ErrorMessage: j.ErrorMessage,
	}
}
