package app

import (
	"fmt"

	"quizhub-service/internal/domain"
)

// ResultPage is the participant-facing rendering of a stored Result:
// a headline, the summary numbers, and one review block per question.
// Pure projection; no mutation and no I/O.
type ResultPage struct {
	Headline       string                `json:"headline"`
	QuizTitle      string                `json:"quiz_title"`
	Participant    string                `json:"participant"`
	ScoreLine      string                `json:"score_line"`
	PercentageLine string                `json:"percentage_line"`
	CorrectLine    string                `json:"correct_line"`
	Passed         bool                  `json:"is_passed"`
	AttemptNumber  int                   `json:"attempt_number"`
	Questions      []QuestionReviewBlock `json:"questions"`
}

// QuestionReviewBlock is one rendered answer review. CorrectAnswer is shown
// only for wrong answers that have a correct-option text; a correct answer
// never renders a "correct answer" block.
type QuestionReviewBlock struct {
	Number        int    `json:"number"`
	QuestionText  string `json:"question_text"`
	YourAnswer    string `json:"your_answer"`
	Correct       bool   `json:"is_correct"`
	PointsEarned  int    `json:"points_earned"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// RenderResult builds the review page for a result.
func RenderResult(result domain.Result) ResultPage {
	page := ResultPage{
		QuizTitle:      result.QuizTitle,
		Participant:    result.ParticipantName,
		ScoreLine:      fmt.Sprintf("%d/%d points", result.Score, result.TotalPoints),
		PercentageLine: fmt.Sprintf("%.1f%%", result.Percentage),
		CorrectLine:    fmt.Sprintf("%d/%d correct", result.CorrectCount, result.TotalQuestions),
		Passed:         result.Passed,
		AttemptNumber:  result.AttemptNumber,
		Questions:      make([]QuestionReviewBlock, 0, len(result.Answers)),
	}
	if result.Passed {
		page.Headline = "Congratulations!"
	} else {
		page.Headline = "Quiz Completed"
	}

	for i, review := range result.Answers {
		block := QuestionReviewBlock{
			Number:       i + 1,
			QuestionText: review.QuestionText,
			YourAnswer:   participantAnswerText(review),
			Correct:      review.Correct,
			PointsEarned: review.PointsEarned,
			Explanation:  review.Explanation,
		}
		if !review.Correct && review.CorrectOptionText != "" {
			block.CorrectAnswer = review.CorrectOptionText
		}
		page.Questions = append(page.Questions, block)
	}
	return page
}

func participantAnswerText(review domain.AnswerReview) string {
	switch {
	case !review.Answered:
		return "No answer"
	case review.SelectedOptionText != "":
		return review.SelectedOptionText
	case review.TextAnswer != "":
		return review.TextAnswer
	default:
		return "No answer"
	}
}

// FormatRemaining renders a countdown as m:ss for timer displays.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
