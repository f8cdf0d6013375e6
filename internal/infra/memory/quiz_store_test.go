package memory

import (
	"context"
	"errors"
	"testing"

	"quizhub-service/internal/domain"
)

func TestQuizStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(nil)

	quiz := sampleQuiz()
	if err := store.SaveQuiz(ctx, quiz); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Sample" || len(got.Questions) != 1 {
		t.Fatalf("unexpected quiz: %+v", got)
	}

	list, err := store.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 quiz, got %d", len(list))
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if err := store.DeleteQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound on second delete, got %v", err)
	}
}

func TestQuizStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(map[string]domain.Quiz{"quiz-1": sampleQuiz()})

	first, _ := store.GetQuiz(ctx, "quiz-1")
	first.Questions[0].Options[0].Text = "tampered"

	second, _ := store.GetQuiz(ctx, "quiz-1")
	if second.Questions[0].Options[0].Text == "tampered" {
		t.Fatal("stored quiz mutated through a returned copy")
	}
}
