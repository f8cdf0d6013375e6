package app

import "quizhub-service/internal/domain"

// PublicQuizSummary is the catalog entry served to participants.
type PublicQuizSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	TimeLimitMinutes int    `json:"time_limit"`
	TotalQuestions   int    `json:"total_questions"`
	TotalPoints      int    `json:"total_points"`
	PassingScore     int    `json:"passing_score"`
}

// PublicQuizDetail is the participant-facing quiz with questions and options
// but with correctness flags and explanations stripped.
type PublicQuizDetail struct {
	ID                     string           `json:"id"`
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	TimeLimitMinutes       int              `json:"time_limit"`
	PassingScore           int              `json:"passing_score"`
	ShowResultsImmediately bool             `json:"show_results_immediately"`
	AllowRetakes           bool             `json:"allow_retakes"`
	MaxAttempts            int              `json:"max_attempts"`
	TotalQuestions         int              `json:"total_questions"`
	TotalPoints            int              `json:"total_points"`
	Questions              []PublicQuestion `json:"questions"`
}

// PublicQuestion mirrors domain.Question without grading metadata.
type PublicQuestion struct {
	ID       string              `json:"id"`
	Text     string              `json:"text"`
	Type     domain.QuestionType `json:"type"`
	Order    int                 `json:"order"`
	Points   int                 `json:"points"`
	Required bool                `json:"required"`
	Options  []PublicOption      `json:"options,omitempty"`
	// Degraded reports a selectable question with no options; the client
	// renders an inline notice instead of failing the whole quiz.
	Degraded bool `json:"degraded,omitempty"`
}

// PublicOption is an option without its correctness flag.
type PublicOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// PublicSummary strips a quiz down to its catalog entry.
func PublicSummary(quiz domain.Quiz) PublicQuizSummary {
	return PublicQuizSummary{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		TotalQuestions:   len(quiz.Questions),
		TotalPoints:      quiz.TotalPoints(),
		PassingScore:     quiz.PassingScore,
	}
}

// PublicDetail strips grading metadata from a quiz for the taking flow.
func PublicDetail(quiz domain.Quiz) PublicQuizDetail {
	detail := PublicQuizDetail{
		ID:                     quiz.ID,
		Title:                  quiz.Title,
		Description:            quiz.Description,
		TimeLimitMinutes:       quiz.TimeLimitMinutes,
		PassingScore:           quiz.PassingScore,
		ShowResultsImmediately: quiz.ShowResultsImmediately,
		AllowRetakes:           quiz.AllowRetakes,
		MaxAttempts:            quiz.MaxAttempts,
		TotalQuestions:         len(quiz.Questions),
		TotalPoints:            quiz.TotalPoints(),
		Questions:              make([]PublicQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		pq := PublicQuestion{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Order:    q.Order,
			Points:   q.PointsOrDefault(),
			Required: q.Required,
		}
		for _, opt := range q.Options {
			pq.Options = append(pq.Options, PublicOption{ID: opt.ID, Text: opt.Text, Order: opt.Order})
		}
		if q.Type.Selectable() && len(pq.Options) == 0 {
			pq.Degraded = true
		}
		detail.Questions = append(detail.Questions, pq)
	}
	return detail
}
