package app

import (
	"math"
	"strings"
	"time"

	"quizhub-service/internal/domain"
)

// gradeAnswer checks one answer against its question. Selectable questions
// grade by the chosen option's correctness flag; free-text questions by a
// trimmed, case-insensitive match against the correct option's text.
func gradeAnswer(q domain.Question, answer domain.Answer) (correct bool, selectedText string) {
	if q.Type.Selectable() && answer.SelectedOptionID != "" {
		opt, ok := q.OptionByID(answer.SelectedOptionID)
		if !ok {
			return false, ""
		}
		return opt.Correct, opt.Text
	}

	text := strings.TrimSpace(answer.TextAnswer)
	if text == "" {
		return false, ""
	}
	expected, ok := q.CorrectOption()
	if !ok {
		return false, ""
	}
	return strings.EqualFold(text, strings.TrimSpace(expected.Text)), ""
}

// scoreSubmission grades a full set of answers into a Result. Every question
// appears in the review in quiz order; unanswered questions are recorded as
// incorrect with zero points. The correct option's text is exposed only when
// the participant's answer was wrong.
func scoreSubmission(quiz domain.Quiz, sessionID string, participant domain.Participant, answers []domain.Answer, attempt int, submittedAt time.Time) domain.Result {
	byQuestion := make(map[string]domain.Answer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}

	result := domain.Result{
		SessionID:        sessionID,
		QuizID:           quiz.ID,
		QuizTitle:        quiz.Title,
		ParticipantName:  participant.Name,
		ParticipantEmail: participant.Email,
		TotalPoints:      quiz.TotalPoints(),
		AttemptNumber:    attempt,
		TotalQuestions:   len(quiz.Questions),
		SubmittedAt:      submittedAt,
		Answers:          make([]domain.AnswerReview, 0, len(quiz.Questions)),
	}

	for _, q := range quiz.Questions {
		review := domain.AnswerReview{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			QuestionType: q.Type,
			Explanation:  q.Explanation,
		}
		if answer, ok := byQuestion[q.ID]; ok && !answer.Empty() {
			review.Answered = true
			review.TextAnswer = strings.TrimSpace(answer.TextAnswer)
			review.Correct, review.SelectedOptionText = gradeAnswer(q, answer)
		}
		if review.Correct {
			review.PointsEarned = q.PointsOrDefault()
			result.Score += review.PointsEarned
			result.CorrectCount++
		} else if expected, ok := q.CorrectOption(); ok {
			review.CorrectOptionText = expected.Text
		}
		result.Answers = append(result.Answers, review)
	}

	if result.TotalPoints > 0 {
		result.Percentage = math.Round(float64(result.Score)/float64(result.TotalPoints)*10000) / 100
	}
	result.Passed = result.Percentage >= float64(quiz.PassingScore)
	return result
}
