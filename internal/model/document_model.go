package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId              uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName            string    `gorm:"type:varchar(255);not null"`
	MimeType            string    `gorm:"type:varchar(100);not null"`
	SizeBytes           int64     `gorm:"not null"`
	StoragePath         string    `gorm:"type:varchar(512)"`
	ExtractionType      string    `gorm:"type:varchar(32);default:'hybrid'"`
	Language            string    `gorm:"type:varchar(8);default:'en'"`
	ConfidenceThreshold float64   `gorm:"default:0.8"`
	Status              string    `gorm:"type:varchar(16);not null;index"`
	Progress            int       `gorm:"default:0"`
	ExtractedData       datatypes.JSON
	ConfidenceScore     *float64
	ProcessingTime      *float64
	ErrorMessage        *string   `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
	CompletedAt         *time.Time
}

func (Document) TableName() string {
	return "documents"
}
