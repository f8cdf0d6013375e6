package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	quizzes := memory.NewQuizStore(map[string]domain.Quiz{"quiz-1": sampleQuiz()})
	service := app.NewTakeService(memory.NewQuizRepository(quizzes, time.Minute), quizzes, memory.NewResponseStore(), store)

	session, err := service.StartSession(context.Background(), "quiz-1", domain.Participant{Name: "Alice"}, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	key := "take:session:" + session.ID()
	if !mr.Exists(key) {
		t.Fatal("expected liveness key to be set")
	}
	if value, err := mr.Get(key); err != nil || value != "quiz-1" {
		t.Fatalf("expected liveness value quiz-1, got %q (%v)", value, err)
	}

	if got, ok := store.Get(session.ID()); !ok || got.ID() != session.ID() {
		t.Fatal("expected session in local map")
	}

	service.Teardown(context.Background(), session.ID())
	if mr.Exists(key) {
		t.Fatal("expected liveness key removed")
	}
	if _, ok := store.Get(session.ID()); ok {
		t.Fatal("expected session removed from local map")
	}
}
