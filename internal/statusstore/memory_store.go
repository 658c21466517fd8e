package statusstore

import (
	"context"
	"time"

	"doc-intelligence-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is the single-instance fallback used when Redis is not
// configured. Statuses are lost on restart, which matches what a dev
// environment needs and nothing more.
type MemoryStore struct {
	statuses *cache.Cache
	results  *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		statuses: cache.New(StatusTTL, time.Hour),
		results:  cache.New(ResultTTL, 10*time.Minute),
	}
}

func (s *MemoryStore) SetStatus(_ context.Context, event dto.StatusEvent) error {
	s.statuses.Set(event.DocumentId, event, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) GetStatus(_ context.Context, documentID string) (*dto.StatusEvent, bool, error) {
	if x, found := s.statuses.Get(documentID); found {
		event := x.(dto.StatusEvent)
		return &event, true, nil
	}
	return nil, false, nil
}

func (s *MemoryStore) SetResult(_ context.Context, documentID string, payload []byte) error {
	s.results.Set(documentID, payload, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, documentID string) ([]byte, bool, error) {
	if x, found := s.results.Get(documentID); found {
		return x.([]byte), true, nil
	}
	return nil, false, nil
}
