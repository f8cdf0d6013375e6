package app

import (
	"strings"

	"quizhub-service/internal/domain"
)

// AnswerSheet holds a participant's current answers keyed by question ID.
// Later edits overwrite in place; at most one answer per question. It never
// contains an entry for a question outside the quiz it was built for.
//
// AnswerSheet is not safe for concurrent use on its own; TakeSession guards
// it with the session mutex.
type AnswerSheet struct {
	questions map[string]domain.Question
	order     []string
	answers   map[string]domain.Answer
}

// NewAnswerSheet builds an empty sheet for the given questions.
func NewAnswerSheet(questions []domain.Question) *AnswerSheet {
	sheet := &AnswerSheet{
		questions: make(map[string]domain.Question, len(questions)),
		order:     make([]string, 0, len(questions)),
		answers:   make(map[string]domain.Answer),
	}
	for _, q := range questions {
		sheet.questions[q.ID] = q
		sheet.order = append(sheet.order, q.ID)
	}
	return sheet
}

// SetAnswer records or replaces the answer for a question. Question IDs not
// in the quiz are rejected with domain.ErrQuestionNotFound. An empty answer
// clears any prior entry.
func (s *AnswerSheet) SetAnswer(questionID, optionID, text string) error {
	if _, ok := s.questions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	answer := domain.Answer{
		QuestionID:       questionID,
		SelectedOptionID: optionID,
		TextAnswer:       strings.TrimSpace(text),
	}
	if answer.Empty() {
		delete(s.answers, questionID)
		return nil
	}
	s.answers[questionID] = answer
	return nil
}

// Answer returns the current answer for a question, if one is recorded.
func (s *AnswerSheet) Answer(questionID string) (domain.Answer, bool) {
	answer, ok := s.answers[questionID]
	return answer, ok
}

// CountAnswered returns the number of questions holding an answer.
func (s *AnswerSheet) CountAnswered() int {
	return len(s.answers)
}

// UnansweredRequired returns the IDs of required questions with no recorded
// answer, in question order.
func (s *AnswerSheet) UnansweredRequired() []string {
	var missing []string
	for _, id := range s.order {
		q := s.questions[id]
		if !q.Required {
			continue
		}
		if _, ok := s.answers[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Snapshot copies the recorded answers in question order, ready for grading.
func (s *AnswerSheet) Snapshot() []domain.Answer {
	answers := make([]domain.Answer, 0, len(s.answers))
	for _, id := range s.order {
		if answer, ok := s.answers[id]; ok {
			answers = append(answers, answer)
		}
	}
	return answers
}
