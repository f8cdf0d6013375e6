package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quizhub-service/internal/domain"
)

// SessionState is the lifecycle state of one taking session.
type SessionState string

const (
	StateInProgress  SessionState = "in_progress"
	StateTimeExpired SessionState = "time_expired"
	StateSubmitting  SessionState = "submitting"
	StateSubmitted   SessionState = "submitted"
	StateClosed      SessionState = "closed"
)

// SessionEvent is pushed to subscribers on state changes and countdown ticks.
type SessionEvent struct {
	Type             string       `json:"type"` // state, tick, submitted
	SessionID        string       `json:"session_id"`
	State            SessionState `json:"state"`
	RemainingSeconds int          `json:"remaining_seconds,omitempty"`
}

// SessionView is a read snapshot of the session for transport layers.
type SessionView struct {
	ID               string       `json:"id"`
	QuizID           string       `json:"quiz_id"`
	State            SessionState `json:"state"`
	Preview          bool         `json:"preview"`
	CurrentIndex     int          `json:"current_index"`
	IsFirst          bool         `json:"is_first"`
	IsLast           bool         `json:"is_last"`
	Progress         float64      `json:"progress"`
	Answered         int          `json:"answered"`
	TotalQuestions   int          `json:"total_questions"`
	RemainingSeconds int          `json:"remaining_seconds"` // -1 when unlimited
	Deadline         *time.Time   `json:"deadline,omitempty"`
}

// submitFunc performs the actual scoring and persistence for a session.
// Injected by TakeService so the session state machine stays storage-free.
type submitFunc func(ctx context.Context, sessionID string, participant domain.Participant, answers []domain.Answer) (domain.Result, error)

// TakeSession is one participant's attempt at one quiz: answer sheet,
// question cursor, countdown, and the at-most-once submission latch.
//
// Sessions are explicitly constructed and torn down; nothing here lives at
// package scope. The latch is the state field itself: Submitting and
// Submitted gate re-entrant submits from both the manual path and the timer.
type TakeSession struct {
	id          string
	quiz        domain.Quiz
	participant domain.Participant
	preview     bool
	createdAt   time.Time
	deadline    time.Time
	now         func() time.Time
	tickEvery   time.Duration
	submit      submitFunc

	mu          sync.RWMutex
	state       SessionState
	sheet       *AnswerSheet
	nav         *Navigator
	result      *domain.Result
	subscribers map[chan SessionEvent]struct{}

	stopTimer chan struct{}
	stopOnce  sync.Once
}

func newTakeSession(id string, quiz domain.Quiz, participant domain.Participant, preview bool, submit submitFunc) *TakeSession {
	return newTakeSessionWithClock(id, quiz, participant, preview, submit, time.Now, time.Second)
}

// newTakeSessionWithClock allows deterministic time and tick cadence in tests.
func newTakeSessionWithClock(id string, quiz domain.Quiz, participant domain.Participant, preview bool, submit submitFunc, now func() time.Time, tickEvery time.Duration) *TakeSession {
	return &TakeSession{
		id:          id,
		quiz:        quiz,
		participant: participant,
		preview:     preview,
		createdAt:   now(),
		now:         now,
		tickEvery:   tickEvery,
		submit:      submit,
		state:       StateInProgress,
		sheet:       NewAnswerSheet(quiz.Questions),
		nav:         NewNavigator(len(quiz.Questions)),
		subscribers: make(map[chan SessionEvent]struct{}),
		stopTimer:   make(chan struct{}),
	}
}

// start arms the countdown. Preview sessions and quizzes without a limit
// (zero or the 1440 sentinel) never get a timer, so auto-submit cannot occur.
func (s *TakeSession) start() {
	if s.preview {
		return
	}
	limit, ok := s.quiz.TimeLimit()
	if !ok {
		return
	}
	s.deadline = s.now().Add(limit)
	go s.runCountdown()
}

func (s *TakeSession) runCountdown() {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopTimer:
			return
		case <-ticker.C:
			remaining := s.deadline.Sub(s.now())
			if remaining > 0 {
				s.broadcast(SessionEvent{
					Type:             "tick",
					SessionID:        s.id,
					State:            s.State(),
					RemainingSeconds: int(remaining / time.Second),
				})
				continue
			}
			s.expire()
			return
		}
	}
}

// expire fires at most once: the state check loses the race against any
// submission that already left InProgress.
func (s *TakeSession) expire() {
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return
	}
	s.state = StateTimeExpired
	s.mu.Unlock()
	s.broadcastState()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.Submit(ctx, true); err != nil {
		// Latch was released on failure; the participant may retry manually.
		log.Printf("session %s: auto-submit on expiry failed: %v", s.id, err)
	}
}

// ID returns the session identifier.
func (s *TakeSession) ID() string { return s.id }

// QuizID returns the identifier of the quiz being taken.
func (s *TakeSession) QuizID() string { return s.quiz.ID }

// State returns the current lifecycle state.
func (s *TakeSession) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Result returns the stored outcome once the session has been submitted.
func (s *TakeSession) Result() (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// SetAnswer records or replaces an answer. Edits are accepted only while the
// session is in progress.
func (s *TakeSession) SetAnswer(questionID, optionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.stateErrLocked(); err != nil {
		return err
	}
	return s.sheet.SetAnswer(questionID, optionID, text)
}

// Answer returns the recorded answer for a question.
func (s *TakeSession) Answer(questionID string) (domain.Answer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet.Answer(questionID)
}

// CountAnswered returns how many questions currently hold an answer.
func (s *TakeSession) CountAnswered() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet.CountAnswered()
}

// UnansweredRequired lists required questions still missing an answer.
func (s *TakeSession) UnansweredRequired() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet.UnansweredRequired()
}

// Next moves the cursor forward one question.
func (s *TakeSession) Next() SessionView {
	s.mu.Lock()
	if s.state == StateInProgress {
		s.nav.Next()
	}
	s.mu.Unlock()
	return s.View()
}

// Previous moves the cursor back one question.
func (s *TakeSession) Previous() SessionView {
	s.mu.Lock()
	if s.state == StateInProgress {
		s.nav.Previous()
	}
	s.mu.Unlock()
	return s.View()
}

// JumpTo moves the cursor directly to an index, clamped into range.
func (s *TakeSession) JumpTo(index int) SessionView {
	s.mu.Lock()
	if s.state == StateInProgress {
		s.nav.JumpTo(index)
	}
	s.mu.Unlock()
	return s.View()
}

// Submit assembles the answers and performs exactly one scoring operation.
// force skips required-question gating; the timer expiry path uses it so
// whatever was answered still gets scored. Concurrent calls are serialized
// through the state latch: a second caller observes Submitting and backs off.
// Failure releases the latch so a retry is possible; success is terminal.
func (s *TakeSession) Submit(ctx context.Context, force bool) (domain.Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitted:
		s.mu.Unlock()
		return domain.Result{}, domain.ErrAlreadySubmitted
	case StateSubmitting:
		s.mu.Unlock()
		return domain.Result{}, domain.ErrSubmitInFlight
	case StateClosed:
		s.mu.Unlock()
		return domain.Result{}, domain.ErrSessionClosed
	}
	if s.preview {
		s.mu.Unlock()
		return domain.Result{}, domain.ErrPreviewSession
	}
	// Once the countdown has fired, a manual retry submits exactly what the
	// forced auto-submit would have; required gating applies only in progress.
	if !force && s.state != StateTimeExpired {
		if missing := s.sheet.UnansweredRequired(); len(missing) > 0 {
			s.mu.Unlock()
			return domain.Result{}, &domain.RequiredUnansweredError{QuestionIDs: missing}
		}
	}
	prior := s.state
	s.state = StateSubmitting
	participant := s.participant
	answers := s.sheet.Snapshot()
	s.mu.Unlock()
	s.broadcastState()

	result, err := s.submit(ctx, s.id, participant, answers)

	s.mu.Lock()
	if err != nil {
		s.state = prior
		s.mu.Unlock()
		s.broadcastState()
		return domain.Result{}, err
	}
	s.state = StateSubmitted
	s.result = &result
	s.mu.Unlock()
	s.stopCountdown()
	s.broadcast(SessionEvent{Type: "submitted", SessionID: s.id, State: StateSubmitted})
	return result, nil
}

// Teardown stops the countdown and detaches all subscribers. A submitted
// session stays submitted; anything else becomes closed. Safe to call twice.
func (s *TakeSession) Teardown() {
	s.stopCountdown()
	s.mu.Lock()
	if s.state != StateSubmitted {
		s.state = StateClosed
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// Subscribe returns a channel of session events, starting with a snapshot.
// The caller must invoke cancel to avoid leaks.
func (s *TakeSession) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.stateEventLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// View returns a read snapshot for rendering.
func (s *TakeSession) View() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := SessionView{
		ID:               s.id,
		QuizID:           s.quiz.ID,
		State:            s.state,
		Preview:          s.preview,
		CurrentIndex:     s.nav.Index(),
		IsFirst:          s.nav.IsFirst(),
		IsLast:           s.nav.IsLast(),
		Progress:         s.nav.ProgressFraction(),
		Answered:         s.sheet.CountAnswered(),
		TotalQuestions:   len(s.quiz.Questions),
		RemainingSeconds: -1,
	}
	if !s.deadline.IsZero() {
		deadline := s.deadline
		view.Deadline = &deadline
		remaining := s.deadline.Sub(s.now())
		if remaining < 0 {
			remaining = 0
		}
		view.RemainingSeconds = int(remaining / time.Second)
	}
	return view
}

func (s *TakeSession) stateErrLocked() error {
	switch s.state {
	case StateInProgress:
		return nil
	case StateTimeExpired:
		return domain.ErrTimeExpired
	case StateSubmitting:
		return domain.ErrSubmitInFlight
	case StateSubmitted:
		return domain.ErrAlreadySubmitted
	default:
		return domain.ErrSessionClosed
	}
}

func (s *TakeSession) stopCountdown() {
	s.stopOnce.Do(func() { close(s.stopTimer) })
}

func (s *TakeSession) stateEventLocked() SessionEvent {
	event := SessionEvent{Type: "state", SessionID: s.id, State: s.state}
	if !s.deadline.IsZero() {
		remaining := s.deadline.Sub(s.now())
		if remaining < 0 {
			remaining = 0
		}
		event.RemainingSeconds = int(remaining / time.Second)
	}
	return event
}

func (s *TakeSession) broadcastState() {
	s.mu.RLock()
	event := s.stateEventLocked()
	s.mu.RUnlock()
	s.broadcast(event)
}

func (s *TakeSession) broadcast(event SessionEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest update so a slow consumer never blocks the session.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}
