package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the lifecycle stage reported for a document.
// completed and failed are terminal; no transitions follow them.
type DocumentStatus string

const (
	StatusQueued     DocumentStatus = "queued"
	StatusProcessing DocumentStatus = "processing"
	StatusAnalyzing  DocumentStatus = "analyzing"
	StatusEnhancing  DocumentStatus = "enhancing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Document struct {
	Id                  uuid.UUID
	UserId              uuid.UUID
	FileName            string
	MimeType            string
	SizeBytes           int64
	StoragePath         string
	ExtractionType      string
	Language            string
	ConfidenceThreshold float64
	Status              DocumentStatus
	Progress            int
	ExtractedData       map[string]interface{}
	ConfidenceScore     *float64
	ProcessingTime      *float64 // seconds
	ErrorMessage        *string
	CreatedAt           time.Time
	UpdatedAt           *time.Time
	CompletedAt         *time.Time
}
