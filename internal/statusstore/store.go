package statusstore

import (
	"context"
	"time"

	"doc-intelligence-be/internal/dto"
)

const (
	// StatusTTL bounds how long a status key outlives its last update.
	StatusTTL = 24 * time.Hour
	// ResultTTL matches the original cache policy for processed results.
	ResultTTL = time.Hour
)

// Store keeps the latest ProcessingStatus per document plus a short-lived
// cache of full processing results.
type Store interface {
	SetStatus(ctx context.Context, event dto.StatusEvent) error
	GetStatus(ctx context.Context, documentID string) (*dto.StatusEvent, bool, error)

	SetResult(ctx context.Context, documentID string, payload []byte) error
	GetResult(ctx context.Context, documentID string) ([]byte, bool, error)
}
