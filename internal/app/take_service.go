package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizhub-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizLister enumerates quizzes for the public catalog.
type QuizLister interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// ResponseStore persists scored submissions and serves result lookups.
type ResponseStore interface {
	SaveResult(ctx context.Context, result domain.Result) error
	GetResult(ctx context.Context, sessionID string) (domain.Result, error)
	CountAttempts(ctx context.Context, quizID, participantEmail string) (int, error)
	ListResults(ctx context.Context, quizID string) ([]domain.Result, error)
}

// SessionRegistry tracks live taking sessions by ID.
type SessionRegistry interface {
	Put(session *TakeSession)
	Get(sessionID string) (*TakeSession, bool)
	Delete(sessionID string)
}

// TakeService hosts the quiz-taking use cases: session lifecycle, answer
// recording, navigation, submission, and result retrieval.
type TakeService struct {
	quizzes   QuizRepository
	lister    QuizLister
	responses ResponseStore
	sessions  SessionRegistry
	newID     func() string
	now       func() time.Time
	tickEvery time.Duration
}

func NewTakeService(quizzes QuizRepository, lister QuizLister, responses ResponseStore, sessions SessionRegistry) *TakeService {
	return &TakeService{
		quizzes:   quizzes,
		lister:    lister,
		responses: responses,
		sessions:  sessions,
		newID:     uuid.NewString,
		now:       time.Now,
		tickEvery: time.Second,
	}
}

// ListActiveQuizzes returns the public catalog, questions stripped.
func (s *TakeService) ListActiveQuizzes(ctx context.Context) ([]PublicQuizSummary, error) {
	quizzes, err := s.lister.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]PublicQuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		if !quiz.Active {
			continue
		}
		summaries = append(summaries, PublicSummary(quiz))
	}
	return summaries, nil
}

// GetPublicQuiz returns the participant-facing quiz detail: questions and
// options included, correctness flags and explanations stripped.
func (s *TakeService) GetPublicQuiz(ctx context.Context, quizID string) (PublicQuizDetail, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return PublicQuizDetail{}, err
	}
	if !quiz.Active {
		return PublicQuizDetail{}, domain.ErrQuizInactive
	}
	return PublicDetail(quiz), nil
}

// StartSession creates and registers a taking session. Participant info is
// captured here, once, and is immutable for the session's duration. Preview
// sessions skip attempt limits and never arm the timer.
func (s *TakeService) StartSession(ctx context.Context, quizID string, participant domain.Participant, preview bool) (*TakeSession, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !preview {
		if !quiz.Active {
			return nil, domain.ErrQuizInactive
		}
		if err := s.checkAttempts(ctx, quiz, participant.Email); err != nil {
			return nil, err
		}
	}

	session := newTakeSessionWithClock(s.newID(), quiz, participant, preview, s.submitterFor(quiz), s.now, s.tickEvery)
	s.sessions.Put(session)
	session.start()
	return session, nil
}

// Session looks up a live session.
func (s *TakeService) Session(sessionID string) (*TakeSession, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RecordAnswer updates the session's answer sheet.
func (s *TakeService) RecordAnswer(_ context.Context, sessionID, questionID, optionID, text string) (SessionView, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	if err := session.SetAnswer(questionID, optionID, text); err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

// Navigate moves the session cursor. action is next, previous, or jump.
func (s *TakeService) Navigate(_ context.Context, sessionID, action string, index int) (SessionView, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	switch action {
	case "next":
		return session.Next(), nil
	case "previous":
		return session.Previous(), nil
	case "jump":
		return session.JumpTo(index), nil
	default:
		return session.View(), nil
	}
}

// Submit triggers the session's manual submit path.
func (s *TakeService) Submit(ctx context.Context, sessionID string) (domain.Result, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	return session.Submit(ctx, false)
}

// Teardown stops the session's countdown and drops it from the registry.
func (s *TakeService) Teardown(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Teardown()
	s.sessions.Delete(sessionID)
}

// Subscribe returns the session's event feed.
func (s *TakeService) Subscribe(sessionID string) (<-chan SessionEvent, func(), error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// GetResult fetches a stored result for reload/deep-link after submission.
func (s *TakeService) GetResult(ctx context.Context, sessionID string) (domain.Result, error) {
	return s.responses.GetResult(ctx, sessionID)
}

// SubmitOneShot scores a complete submission without a hosted session, for
// clients that collected answers themselves. The answer-sheet invariant still
// holds: answers for unknown questions are rejected.
func (s *TakeService) SubmitOneShot(ctx context.Context, quizID string, participant domain.Participant, answers []domain.Answer) (domain.Result, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Result{}, err
	}
	if !quiz.Active {
		return domain.Result{}, domain.ErrQuizInactive
	}
	if err := s.checkAttempts(ctx, quiz, participant.Email); err != nil {
		return domain.Result{}, err
	}

	sheet := NewAnswerSheet(quiz.Questions)
	for _, answer := range answers {
		if err := sheet.SetAnswer(answer.QuestionID, answer.SelectedOptionID, answer.TextAnswer); err != nil {
			return domain.Result{}, err
		}
	}
	return s.submitterFor(quiz)(ctx, s.newID(), participant, sheet.Snapshot())
}

// submitterFor binds a quiz to the scoring+persist step handed to sessions.
func (s *TakeService) submitterFor(quiz domain.Quiz) submitFunc {
	return func(ctx context.Context, sessionID string, participant domain.Participant, answers []domain.Answer) (domain.Result, error) {
		attempts, err := s.responses.CountAttempts(ctx, quiz.ID, participant.Email)
		if err != nil {
			return domain.Result{}, err
		}
		result := scoreSubmission(quiz, sessionID, participant, answers, attempts+1, s.now())
		if err := s.responses.SaveResult(ctx, result); err != nil {
			return domain.Result{}, err
		}
		return result, nil
	}
}

func (s *TakeService) checkAttempts(ctx context.Context, quiz domain.Quiz, email string) error {
	attempts, err := s.responses.CountAttempts(ctx, quiz.ID, email)
	if err != nil {
		return err
	}
	if attempts == 0 {
		return nil
	}
	if !quiz.AllowRetakes {
		return domain.ErrRetakesNotAllowed
	}
	if quiz.MaxAttempts > 0 && attempts >= quiz.MaxAttempts {
		return domain.ErrMaxAttemptsReached
	}
	return nil
}
