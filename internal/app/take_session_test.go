package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quizhub-service/internal/domain"
)

func sessionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:           "quiz-1",
		Title:        "Networking Basics",
		Active:       true,
		PassingScore: 60,
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "Which port does HTTPS use by default?",
				Type: domain.MultipleChoice,
				Options: []domain.Option{
					{ID: "o1", Text: "80"},
					{ID: "o2", Text: "443", Correct: true},
					{ID: "o3", Text: "8080"},
				},
				Points: 2,
			},
			{
				ID:       "q2",
				Text:     "TCP guarantees in-order delivery.",
				Type:     domain.TrueFalse,
				Required: true,
				Options: []domain.Option{
					{ID: "t", Text: "True", Correct: true},
					{ID: "f", Text: "False"},
				},
			},
			{
				ID:   "q3",
				Text: "Name the protocol that resolves hostnames.",
				Type: domain.FreeText,
				Options: []domain.Option{
					{ID: "a", Text: "DNS", Correct: true},
				},
			},
		},
	}
}

func countingSubmitter(calls *int32, delay time.Duration, fail *int32) submitFunc {
	return func(_ context.Context, sessionID string, participant domain.Participant, answers []domain.Answer) (domain.Result, error) {
		atomic.AddInt32(calls, 1)
		if delay > 0 {
			time.Sleep(delay)
		}
		if fail != nil && atomic.AddInt32(fail, -1) >= 0 {
			return domain.Result{}, errors.New("store unavailable")
		}
		return domain.Result{SessionID: sessionID, ParticipantName: participant.Name, TotalQuestions: len(answers)}, nil
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func waitForState(t *testing.T, s *TakeSession, want SessionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session never reached state %s, still %s", want, s.State())
}

func TestConcurrentSubmitScoresOnce(t *testing.T) {
	var calls int32
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{Name: "Alice"}, false, countingSubmitter(&calls, 20*time.Millisecond, nil))
	if err := session.SetAnswer("q2", "t", ""); err != nil {
		t.Fatalf("answer: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	var successes int32
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := session.Submit(context.Background(), false)
			if err == nil {
				atomic.AddInt32(&successes, 1)
				return
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 successful submit, got %d", successes)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("submitter invoked %d times, want 1", got)
	}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrSubmitInFlight) && !errors.Is(err, domain.ErrAlreadySubmitted) {
			t.Fatalf("unexpected error from losing submit: %v", err)
		}
	}
	if session.State() != StateSubmitted {
		t.Fatalf("expected submitted state, got %s", session.State())
	}
}

func TestRepeatSubmitAfterSuccess(t *testing.T) {
	var calls int32
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(&calls, 0, nil))
	_ = session.SetAnswer("q2", "t", "")

	if _, err := session.Submit(context.Background(), false); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := session.Submit(context.Background(), false); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("submitter invoked %d times, want 1", calls)
	}
}

func TestFailedSubmitReleasesLatch(t *testing.T) {
	var calls int32
	failures := int32(1)
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(&calls, 0, &failures))
	_ = session.SetAnswer("q2", "t", "")

	if _, err := session.Submit(context.Background(), false); err == nil {
		t.Fatal("expected first submit to fail")
	}
	if session.State() != StateInProgress {
		t.Fatalf("failed submit should restore in_progress, got %s", session.State())
	}
	// Answers stay editable after a failed submit.
	if err := session.SetAnswer("q1", "o2", ""); err != nil {
		t.Fatalf("answer after failed submit: %v", err)
	}
	if _, err := session.Submit(context.Background(), false); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if calls != 2 {
		t.Fatalf("submitter invoked %d times, want 2", calls)
	}
}

func TestRequiredQuestionsGateSubmit(t *testing.T) {
	var calls int32
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(&calls, 0, nil))
	_ = session.SetAnswer("q1", "o2", "")
	_ = session.SetAnswer("q3", "", "dns")

	_, err := session.Submit(context.Background(), false)
	var unanswered *domain.RequiredUnansweredError
	if !errors.As(err, &unanswered) {
		t.Fatalf("expected RequiredUnansweredError, got %v", err)
	}
	if len(unanswered.QuestionIDs) != 1 || unanswered.QuestionIDs[0] != "q2" {
		t.Fatalf("expected [q2] unanswered, got %v", unanswered.QuestionIDs)
	}
	if calls != 0 {
		t.Fatalf("gated submit must not reach the submitter, got %d calls", calls)
	}

	_ = session.SetAnswer("q2", "t", "")
	if _, err := session.Submit(context.Background(), false); err != nil {
		t.Fatalf("submit after answering required question: %v", err)
	}
}

func TestForceSubmitSkipsRequiredGating(t *testing.T) {
	var calls int32
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(&calls, 0, nil))

	if _, err := session.Submit(context.Background(), true); err != nil {
		t.Fatalf("forced submit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("submitter invoked %d times, want 1", calls)
	}
}

func TestCountdownExpiryAutoSubmits(t *testing.T) {
	quiz := sessionQuiz()
	quiz.TimeLimitMinutes = 10
	clock := newFakeClock()
	var calls int32
	session := newTakeSessionWithClock("s1", quiz, domain.Participant{}, false, countingSubmitter(&calls, 0, nil), clock.Now, time.Millisecond)
	_ = session.SetAnswer("q1", "o2", "")
	session.start()
	defer session.Teardown()

	clock.Advance(11 * time.Minute)
	waitForState(t, session, StateSubmitted)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expiry submitted %d times, want 1", got)
	}
	if _, ok := session.Result(); !ok {
		t.Fatal("expected a stored result after expiry")
	}
}

func TestExpiryLosesRaceAgainstManualSubmit(t *testing.T) {
	quiz := sessionQuiz()
	quiz.TimeLimitMinutes = 10
	clock := newFakeClock()
	var calls int32
	session := newTakeSessionWithClock("s1", quiz, domain.Participant{}, false, countingSubmitter(&calls, 0, nil), clock.Now, time.Millisecond)
	_ = session.SetAnswer("q2", "t", "")
	session.start()
	defer session.Teardown()

	if _, err := session.Submit(context.Background(), false); err != nil {
		t.Fatalf("manual submit: %v", err)
	}
	session.expire()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("submitter invoked %d times after expiry race, want 1", got)
	}
}

func TestManualRetryAfterFailedAutoSubmit(t *testing.T) {
	quiz := sessionQuiz()
	quiz.TimeLimitMinutes = 10
	clock := newFakeClock()
	var calls int32
	failures := int32(1)
	session := newTakeSessionWithClock("s1", quiz, domain.Participant{}, false, countingSubmitter(&calls, 0, &failures), clock.Now, time.Millisecond)
	_ = session.SetAnswer("q1", "o2", "")
	// Required q2 stays unanswered so the countdown forces the submit.
	session.start()
	defer session.Teardown()

	clock.Advance(11 * time.Minute)

	// The auto-submit fails at the store and the session falls back to
	// time_expired.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) < 1 || session.State() != StateTimeExpired {
		if time.Now().After(deadline) {
			t.Fatalf("expected time_expired after failed auto-submit, state=%s calls=%d", session.State(), calls)
		}
		time.Sleep(time.Millisecond)
	}

	// Edits are over, but with an error that says so.
	if err := session.SetAnswer("q2", "t", ""); !errors.Is(err, domain.ErrTimeExpired) {
		t.Fatalf("expected ErrTimeExpired for edit after expiry, got %v", err)
	}

	// The manual retry is not gated on required questions; it submits exactly
	// what the forced auto-submit would have.
	result, err := session.Submit(context.Background(), false)
	if err != nil {
		t.Fatalf("retry after failed auto-submit: %v", err)
	}
	if result.SessionID != "s1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("submitter invoked %d times, want 2", got)
	}
	if session.State() != StateSubmitted {
		t.Fatalf("expected submitted, got %s", session.State())
	}
}

func TestNoCountdownWithoutLimit(t *testing.T) {
	for _, minutes := range []int{0, domain.UnlimitedTimeLimit} {
		quiz := sessionQuiz()
		quiz.TimeLimitMinutes = minutes
		var calls int32
		session := newTakeSessionWithClock("s1", quiz, domain.Participant{}, false, countingSubmitter(&calls, 0, nil), time.Now, time.Millisecond)
		session.start()

		view := session.View()
		if view.Deadline != nil || view.RemainingSeconds != -1 {
			t.Fatalf("time_limit=%d should have no deadline, got %+v", minutes, view)
		}
		time.Sleep(10 * time.Millisecond)
		if session.State() != StateInProgress {
			t.Fatalf("time_limit=%d auto-advanced to %s", minutes, session.State())
		}
		session.Teardown()
	}
}

func TestPreviewSessionNeverSubmits(t *testing.T) {
	quiz := sessionQuiz()
	quiz.TimeLimitMinutes = 10
	var calls int32
	session := newTakeSessionWithClock("s1", quiz, domain.Participant{}, true, countingSubmitter(&calls, 0, nil), time.Now, time.Millisecond)
	session.start()
	defer session.Teardown()

	if view := session.View(); view.Deadline != nil {
		t.Fatal("preview session must not arm the countdown")
	}
	if _, err := session.Submit(context.Background(), false); !errors.Is(err, domain.ErrPreviewSession) {
		t.Fatalf("expected ErrPreviewSession, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("preview reached the submitter %d times", calls)
	}
}

func TestAnswerOverwriteAndRejection(t *testing.T) {
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(new(int32), 0, nil))

	_ = session.SetAnswer("q1", "o1", "")
	_ = session.SetAnswer("q1", "o2", "")
	answer, ok := session.Answer("q1")
	if !ok || answer.SelectedOptionID != "o2" {
		t.Fatalf("expected latest answer o2, got %+v", answer)
	}
	if session.CountAnswered() != 1 {
		t.Fatalf("overwrite must not add entries, got %d", session.CountAnswered())
	}

	if err := session.SetAnswer("q99", "o1", ""); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound for unknown question, got %v", err)
	}

	// Clearing with an empty answer removes the entry.
	_ = session.SetAnswer("q1", "", "")
	if session.CountAnswered() != 0 {
		t.Fatalf("empty answer should clear, got %d answered", session.CountAnswered())
	}
}

func TestNavigationClamping(t *testing.T) {
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(new(int32), 0, nil))

	if view := session.Previous(); view.CurrentIndex != 0 || !view.IsFirst {
		t.Fatalf("previous on first question moved cursor: %+v", view)
	}
	if view := session.JumpTo(99); view.CurrentIndex != 2 || !view.IsLast {
		t.Fatalf("jump past end should clamp to last, got %+v", view)
	}
	if view := session.Next(); view.CurrentIndex != 2 {
		t.Fatalf("next on last question moved cursor: %+v", view)
	}
	if view := session.JumpTo(-5); view.CurrentIndex != 0 {
		t.Fatalf("negative jump should clamp to first, got %+v", view)
	}
	if view := session.JumpTo(1); view.Progress != 2.0/3.0 {
		t.Fatalf("expected progress 2/3, got %f", view.Progress)
	}
}

func TestSubscribeAndTeardown(t *testing.T) {
	session := newTakeSession("s1", sessionQuiz(), domain.Participant{}, false, countingSubmitter(new(int32), 0, nil))
	ch, cancel := session.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.Type != "state" || initial.State != StateInProgress {
		t.Fatalf("expected initial state event, got %+v", initial)
	}

	_ = session.SetAnswer("q2", "t", "")
	if _, err := session.Submit(context.Background(), false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var sawSubmitted bool
	timeout := time.After(time.Second)
	for !sawSubmitted {
		select {
		case event := <-ch:
			if event.Type == "submitted" {
				sawSubmitted = true
			}
		case <-timeout:
			t.Fatal("never received submitted event")
		}
	}

	session.Teardown()
	if session.State() != StateSubmitted {
		t.Fatalf("teardown must not clobber submitted, got %s", session.State())
	}

	fresh := newTakeSession("s2", sessionQuiz(), domain.Participant{}, false, countingSubmitter(new(int32), 0, nil))
	fresh.Teardown()
	fresh.Teardown() // idempotent
	if err := fresh.SetAnswer("q1", "o1", ""); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed after teardown, got %v", err)
	}
}
