package statusstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"doc-intelligence-be/internal/dto"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func statusKey(documentID string) string {
	return fmt.Sprintf("doc_status:%s", documentID)
}

func resultKey(documentID string) string {
	return fmt.Sprintf("doc_result:%s", documentID)
}

func (s *RedisStore) SetStatus(ctx context.Context, event dto.StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}
	return s.rdb.Set(ctx, statusKey(event.DocumentId), data, StatusTTL).Err()
}

func (s *RedisStore) GetStatus(ctx context.Context, documentID string) (*dto.StatusEvent, bool, error) {
	data, err := s.rdb.Get(ctx, statusKey(documentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var event dto.StatusEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal status event: %w", err)
	}
	return &event, true, nil
}

func (s *RedisStore) SetResult(ctx context.Context, documentID string, payload []byte) error {
	return s.rdb.Set(ctx, resultKey(documentID), payload, ResultTTL).Err()
}

func (s *RedisStore) GetResult(ctx context.Context, documentID string) ([]byte, bool, error) {
	data, err := s.rdb.Get(ctx, resultKey(documentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
