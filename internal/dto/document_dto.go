package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadOptions carries the optional multipart form fields accompanying
// an upload. Zero values fall back to hybrid / en / 0.8.
type UploadOptions struct {
	ExtractionType      string
	Language            string
	ConfidenceThreshold float64
}

type UploadDocumentResponse struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

type ShowDocumentResponse struct {
	Id              uuid.UUID              `json:"id"`
	FileName        string                 `json:"file_name"`
	MimeType        string                 `json:"mime_type"`
	SizeBytes       int64                  `json:"size_bytes"`
	ExtractionType  string                 `json:"extraction_type"`
	Language        string                 `json:"language"`
	Status          string                 `json:"status"`
	Progress        int                    `json:"progress"`
	ExtractedData   map[string]interface{} `json:"extracted_data,omitempty"`
	ConfidenceScore *float64               `json:"confidence_score,omitempty"`
	ProcessingTime  *float64               `json:"processing_time,omitempty"`
	ErrorMessage    *string                `json:"error_message,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*ShowDocumentResponse `json:"documents"`
	Total     int64                   `json:"total"`
}

type ProcessDocumentRequest struct {
	DocumentId          uuid.UUID `json:"document_id" validate:"required"`
	ExtractionType      string    `json:"extraction_type" validate:"required,oneof=structured unstructured hybrid"`
	Language            string    `json:"language"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
}

type ProcessDocumentResponse struct {
	DocumentId      uuid.UUID              `json:"document_id"`
	Status          string                 `json:"status"`
	ExtractedData   map[string]interface{} `json:"extracted_data"`
	ConfidenceScore float64                `json:"confidence_score"`
	ProcessingTime  float64                `json:"processing_time"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// ProcessDocumentMessage is the job payload queued for the background consumer.
type ProcessDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
