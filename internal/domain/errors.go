package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInactive indicates the quiz exists but is not open for taking.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrQuestionNotFound indicates a question ID outside the current quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrSessionNotFound is returned when a taking session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned for edits or submits after the session ended.
	ErrSessionClosed = errors.New("session already closed")
	// ErrTimeExpired is returned for answer edits after the countdown fired.
	// The session can still be submitted.
	ErrTimeExpired = errors.New("time limit expired")
	// ErrAlreadySubmitted is returned when a second submission is attempted
	// after one has succeeded.
	ErrAlreadySubmitted = errors.New("session already submitted")
	// ErrSubmitInFlight is returned when a submission is already pending.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrPreviewSession is returned when a preview session tries to submit.
	ErrPreviewSession = errors.New("preview sessions cannot submit")
	// ErrResultNotFound indicates no stored result for the session ID.
	ErrResultNotFound = errors.New("result not found")
	// ErrMaxAttemptsReached indicates the participant used all allowed attempts.
	ErrMaxAttemptsReached = errors.New("maximum attempts reached")
	// ErrRetakesNotAllowed indicates the quiz permits a single attempt.
	ErrRetakesNotAllowed = errors.New("retakes not allowed for this quiz")
)

// RequiredUnansweredError reports required questions with no recorded answer,
// in question order. Submission is blocked until they are answered or forced.
type RequiredUnansweredError struct {
	QuestionIDs []string
}

func (e *RequiredUnansweredError) Error() string {
	return fmt.Sprintf("required questions unanswered: %s", strings.Join(e.QuestionIDs, ", "))
}
