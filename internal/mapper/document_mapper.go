package mapper

import (
	"encoding/json"
	"time"

	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var extracted map[string]interface{}
	if len(d.ExtractedData) > 0 {
		// Corrupt JSON leaves extracted nil rather than failing the read.
		_ = json.Unmarshal(d.ExtractedData, &extracted)
	}

	return &entity.Document{
		Id:                  d.Id,
		UserId:              d.UserId,
		FileName:            d.FileName,
		MimeType:            d.MimeType,
		SizeBytes:           d.SizeBytes,
		StoragePath:         d.StoragePath,
		ExtractionType:      d.ExtractionType,
		Language:            d.Language,
		ConfidenceThreshold: d.ConfidenceThreshold,
		Status:              entity.DocumentStatus(d.Status),
		Progress:            d.Progress,
		ExtractedData:       extracted,
		ConfidenceScore:     d.ConfidenceScore,
		ProcessingTime:      d.ProcessingTime,
		ErrorMessage:        d.ErrorMessage,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           updatedAt,
		CompletedAt:         d.CompletedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var extracted datatypes.JSON
	if d.ExtractedData != nil {
		raw, err := json.Marshal(d.ExtractedData)
		if err == nil {
			extracted = datatypes.JSON(raw)
		}
	}

	return &model.Document{
		Id:                  d.Id,
		UserId:              d.UserId,
		FileName:            d.FileName,
		MimeType:            d.MimeType,
		SizeBytes:           d.SizeBytes,
		StoragePath:         d.StoragePath,
		ExtractionType:      d.ExtractionType,
		Language:            d.Language,
		ConfidenceThreshold: d.ConfidenceThreshold,
		Status:              string(d.Status),
		Progress:            d.Progress,
		ExtractedData:       extracted,
		ConfidenceScore:     d.ConfidenceScore,
		ProcessingTime:      d.ProcessingTime,
		ErrorMessage:        d.ErrorMessage,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           updatedAt,
		CompletedAt:         d.CompletedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
