package app_test

import (
	"context"
	"errors"
	"testing"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func newAdminService() (*app.AdminService, *memory.QuizStore, *memory.ResponseStore) {
	store := memory.NewQuizStore(nil)
	responses := memory.NewResponseStore()
	return app.NewAdminService(store, responses), store, responses
}

func TestCreateAndUpdateQuiz(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()

	quiz, err := service.CreateQuiz(ctx, app.QuizInput{
		Title:            "Go Fundamentals",
		Description:      "Basics of the language",
		TimeLimitMinutes: 30,
		PassingScore:     70,
		Active:           true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == "" || quiz.CreatedAt.IsZero() {
		t.Fatalf("quiz missing identity: %+v", quiz)
	}

	updated, err := service.UpdateQuiz(ctx, quiz.ID, app.QuizInput{
		Title:        "Go Fundamentals v2",
		PassingScore: 80,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Go Fundamentals v2" || updated.PassingScore != 80 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Active {
		t.Fatal("update replaces settings wholesale; omitted active should be false")
	}

	stored, err := service.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Go Fundamentals v2" {
		t.Fatalf("store not updated: %+v", stored)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()

	cases := []app.QuizInput{
		{Title: ""},
		{Title: "ok", PassingScore: 120},
		{Title: "ok", TimeLimitMinutes: 2000},
		{Title: "ok", MaxAttempts: -1},
	}
	for i, input := range cases {
		if _, err := service.CreateQuiz(ctx, input); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, input)
		}
	}
}

func TestQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()

	quiz, err := service.CreateQuiz(ctx, app.QuizInput{Title: "Quiz", Active: true})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	question, err := service.AddQuestion(ctx, quiz.ID, app.QuestionInput{
		Text: "Which keyword declares a constant?",
		Type: domain.MultipleChoice,
		Options: []app.OptionInput{
			{Text: "let", Order: 1},
			{Text: "const", Correct: true, Order: 2},
			{Text: "static", Order: 3},
		},
		Points:   2,
		Required: true,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if question.ID == "" || len(question.Options) != 3 {
		t.Fatalf("question not built: %+v", question)
	}
	if question.Order != 1 {
		t.Fatalf("first question should default to order 1, got %d", question.Order)
	}

	updated, err := service.UpdateQuestion(ctx, question.ID, app.QuestionInput{
		Text: "Which keyword declares a compile-time constant?",
		Type: domain.MultipleChoice,
		Options: []app.OptionInput{
			{Text: "const", Correct: true, Order: 1},
			{Text: "var", Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("update question: %v", err)
	}
	if len(updated.Options) != 2 || updated.Order != 1 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := service.DeleteQuestion(ctx, question.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if _, err := service.GetQuestion(ctx, question.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound after delete, got %v", err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()
	quiz, _ := service.CreateQuiz(ctx, app.QuizInput{Title: "Quiz"})

	if _, err := service.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "", Type: domain.FreeText}); err == nil {
		t.Fatal("expected validation error for empty text")
	}
	if _, err := service.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "ok", Type: "essay"}); err == nil {
		t.Fatal("expected validation error for unknown type")
	}
	if _, err := service.AddQuestion(ctx, "missing", app.QuestionInput{Text: "ok", Type: domain.FreeText}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestTextQuestionDropsOptions(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()
	quiz, _ := service.CreateQuiz(ctx, app.QuizInput{Title: "Quiz"})

	question, err := service.AddQuestion(ctx, quiz.ID, app.QuestionInput{
		Text:    "Name the capital of France",
		Type:    domain.FreeText,
		Options: []app.OptionInput{{Text: "Paris", Correct: true}},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(question.Options) != 0 {
		t.Fatalf("free-text questions must not keep options, got %+v", question.Options)
	}
}

func TestReorderQuestions(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()
	quiz, _ := service.CreateQuiz(ctx, app.QuizInput{Title: "Quiz"})

	var ids []string
	for _, text := range []string{"first", "second", "third"} {
		q, err := service.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: text, Type: domain.FreeText})
		if err != nil {
			t.Fatalf("add %s: %v", text, err)
		}
		ids = append(ids, q.ID)
	}

	reordered, err := service.ReorderQuestions(ctx, quiz.ID, []string{ids[2], ids[0], ids[1]})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := []string{reordered.Questions[0].ID, reordered.Questions[1].ID, reordered.Questions[2].ID}
	want := []string{ids[2], ids[0], ids[1]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := service.ReorderQuestions(ctx, quiz.ID, []string{"bogus"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound for unknown ID, got %v", err)
	}

	// A partial list pushes unlisted questions behind the listed ones.
	partial, err := service.ReorderQuestions(ctx, quiz.ID, []string{ids[1]})
	if err != nil {
		t.Fatalf("partial reorder: %v", err)
	}
	if partial.Questions[0].ID != ids[1] {
		t.Fatalf("listed question should lead, got %s", partial.Questions[0].ID)
	}
}

func TestDeleteQuizRemovesIt(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newAdminService()
	quiz, _ := service.CreateQuiz(ctx, app.QuizInput{Title: "Quiz"})

	if err := service.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.GetQuiz(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if err := service.DeleteQuiz(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("second delete should fail, got %v", err)
	}
}

func TestListResponsesFiltersByQuiz(t *testing.T) {
	ctx := context.Background()
	service, _, responses := newAdminService()

	_ = responses.SaveResult(ctx, domain.Result{SessionID: "s1", QuizID: "quiz-1"})
	_ = responses.SaveResult(ctx, domain.Result{SessionID: "s2", QuizID: "quiz-2"})
	_ = responses.SaveResult(ctx, domain.Result{SessionID: "s3", QuizID: "quiz-1"})

	all, err := service.ListResponses(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}

	filtered, err := service.ListResponses(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 results for quiz-1, got %d", len(filtered))
	}
}
