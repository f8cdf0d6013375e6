package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// ResultStore layers a Redis read cache over a durable app.ResponseStore.
// Results are immutable once written, so cache entries never go stale:
//
//	SET result:{sessionID} {json} EX ttl
type ResultStore struct {
	client  *redis.Client
	backing app.ResponseStore
	ttl     time.Duration
}

func NewResultStore(client *redis.Client, backing app.ResponseStore, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, backing: backing, ttl: ttl}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.Result) error {
	if err := s.backing.SaveResult(ctx, result); err != nil {
		return err
	}
	if raw, err := json.Marshal(result); err == nil {
		// Cache write is best-effort; the durable store is authoritative.
		_ = s.client.Set(ctx, s.key(result.SessionID), raw, s.ttl).Err()
	}
	return nil
}

func (s *ResultStore) GetResult(ctx context.Context, sessionID string) (domain.Result, error) {
	if raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes(); err == nil {
		var result domain.Result
		if err := json.Unmarshal(raw, &result); err == nil {
			return result, nil
		}
	}

	// Cache miss or Redis trouble; the durable store is authoritative.
	result, err := s.backing.GetResult(ctx, sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	if raw, err := json.Marshal(result); err == nil {
		_ = s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err()
	}
	return result, nil
}

func (s *ResultStore) CountAttempts(ctx context.Context, quizID, participantEmail string) (int, error) {
	return s.backing.CountAttempts(ctx, quizID, participantEmail)
}

func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.backing.ListResults(ctx, quizID)
}

func (s *ResultStore) key(sessionID string) string {
	return "result:" + sessionID
}
