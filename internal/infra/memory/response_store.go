package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"quizhub-service/internal/domain"
)

// ResponseStore is an in-memory implementation of app.ResponseStore.
type ResponseStore struct {
	mu      sync.RWMutex
	results map[string]domain.Result
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{results: make(map[string]domain.Result)}
}

func (s *ResponseStore) SaveResult(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.SessionID] = result
	return nil
}

func (s *ResponseStore) GetResult(_ context.Context, sessionID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[sessionID]
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return result, nil
}

func (s *ResponseStore) CountAttempts(_ context.Context, quizID, participantEmail string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, result := range s.results {
		if result.QuizID == quizID && strings.EqualFold(result.ParticipantEmail, participantEmail) {
			count++
		}
	}
	return count, nil
}

func (s *ResponseStore) ListResults(_ context.Context, quizID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.Result, 0, len(s.results))
	for _, result := range s.results {
		if quizID != "" && result.QuizID != quizID {
			continue
		}
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].SubmittedAt.After(results[j].SubmittedAt) })
	return results, nil
}
