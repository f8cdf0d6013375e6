package domain

import (
	"strings"
	"time"
)

// QuestionType distinguishes how a question is answered and graded.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FreeText       QuestionType = "text"
)

// Selectable reports whether the question is answered by picking an option.
func (t QuestionType) Selectable() bool {
	return t == MultipleChoice || t == TrueFalse
}

// UnlimitedTimeLimit is the legacy sentinel for quizzes without a countdown.
// It is treated the same as a zero time limit everywhere.
const UnlimitedTimeLimit = 1440

// Option is one selectable choice belonging to a question.
// Correct is stripped from participant-facing views.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
	Order   int    `json:"order"`
}

// Question is one prompt of a quiz.
type Question struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Order       int          `json:"order"`
	Points      int          `json:"points"` // defaults to 1 if zero
	Required    bool         `json:"required"`
	Explanation string       `json:"explanation,omitempty"`
	Options     []Option     `json:"options,omitempty"`
}

// PointsOrDefault normalizes the zero value to a single point.
func (q Question) PointsOrDefault() int {
	if q.Points == 0 {
		return 1
	}
	return q.Points
}

// CorrectOption returns the first option flagged correct, if any.
func (q Question) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return Option{}, false
}

// OptionByID looks up an option by identifier.
func (q Question) OptionByID(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Quiz is a named, ordered collection of questions with scoring configuration.
// Immutable once fetched for a session.
type Quiz struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	TimeLimitMinutes       int        `json:"time_limit"`
	PassingScore           int        `json:"passing_score"` // percentage 0-100
	Active                 bool       `json:"is_active"`
	ShowResultsImmediately bool       `json:"show_results_immediately"`
	AllowRetakes           bool       `json:"allow_retakes"`
	MaxAttempts            int        `json:"max_attempts"` // 0 = unlimited
	Questions              []Question `json:"questions,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// TimeLimit converts the configured limit to a duration.
// ok is false when the quiz has no countdown (zero or the 1440 sentinel).
func (q Quiz) TimeLimit() (time.Duration, bool) {
	if q.TimeLimitMinutes <= 0 || q.TimeLimitMinutes == UnlimitedTimeLimit {
		return 0, false
	}
	return time.Duration(q.TimeLimitMinutes) * time.Minute, true
}

// TotalPoints sums the point values of all questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.PointsOrDefault()
	}
	return total
}

// QuestionByID looks up a question by identifier.
func (q Quiz) QuestionByID(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Participant identifies who is taking a quiz. Captured once per session.
type Participant struct {
	Name  string `json:"participant_name"`
	Email string `json:"participant_email"`
}

// Answer is a participant's recorded response to one question.
// Exactly one of SelectedOptionID / TextAnswer is set depending on type.
type Answer struct {
	QuestionID       string `json:"question_id"`
	SelectedOptionID string `json:"selected_option_id,omitempty"`
	TextAnswer       string `json:"text_answer,omitempty"`
}

// Empty reports whether the answer carries no content.
func (a Answer) Empty() bool {
	return a.SelectedOptionID == "" && strings.TrimSpace(a.TextAnswer) == ""
}

// AnswerReview is the graded, participant-facing record for one question.
// CorrectOptionText is populated only when the answer was wrong.
type AnswerReview struct {
	QuestionID         string       `json:"question_id"`
	QuestionText       string       `json:"question_text"`
	QuestionType       QuestionType `json:"question_type"`
	SelectedOptionText string       `json:"selected_option_text,omitempty"`
	TextAnswer         string       `json:"text_answer,omitempty"`
	Answered           bool         `json:"answered"`
	Correct            bool         `json:"is_correct"`
	PointsEarned       int          `json:"points_earned"`
	CorrectOptionText  string       `json:"correct_option_text,omitempty"`
	Explanation        string       `json:"explanation,omitempty"`
}

// Result is the computed outcome of one submitted session.
type Result struct {
	SessionID        string         `json:"session_id"`
	QuizID           string         `json:"quiz_id"`
	QuizTitle        string         `json:"quiz_title"`
	ParticipantName  string         `json:"participant_name"`
	ParticipantEmail string         `json:"participant_email"`
	Score            int            `json:"score"`
	TotalPoints      int            `json:"total_points"`
	Percentage       float64        `json:"percentage"`
	Passed           bool           `json:"is_passed"`
	AttemptNumber    int            `json:"attempt_number"`
	CorrectCount     int            `json:"correct_answers_count"`
	TotalQuestions   int            `json:"total_questions_count"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	Answers          []AnswerReview `json:"answers"`
}
