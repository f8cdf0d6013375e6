package app

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quizhub-service/internal/domain"
)

// QuizStore is the authoring-side storage for quiz documents.
type QuizStore interface {
	QuizLister
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuizInput is the admin payload for creating or updating a quiz.
type QuizInput struct {
	Title                  string `json:"title" validate:"required,max=100"`
	Description            string `json:"description" validate:"max=500"`
	TimeLimitMinutes       int    `json:"time_limit" validate:"min=0,max=1440"`
	PassingScore           int    `json:"passing_score" validate:"min=0,max=100"`
	Active                 bool   `json:"is_active"`
	ShowResultsImmediately bool   `json:"show_results_immediately"`
	AllowRetakes           bool   `json:"allow_retakes"`
	MaxAttempts            int    `json:"max_attempts" validate:"min=0"`
}

// QuestionInput is the admin payload for creating or updating a question.
type QuestionInput struct {
	Text        string              `json:"text" validate:"required,max=500"`
	Type        domain.QuestionType `json:"type" validate:"required,oneof=multiple_choice true_false text"`
	Order       int                 `json:"order" validate:"min=0"`
	Points      int                 `json:"points" validate:"min=0"`
	Required    bool                `json:"required"`
	Explanation string              `json:"explanation" validate:"max=1000"`
	Options     []OptionInput       `json:"options" validate:"dive"`
}

// OptionInput is one option of a selectable question.
type OptionInput struct {
	Text    string `json:"text" validate:"required,max=200"`
	Correct bool   `json:"correct"`
	Order   int    `json:"order" validate:"min=0"`
}

// AdminService contains the quiz-authoring use cases.
type AdminService struct {
	store     QuizStore
	responses ResponseStore
	validate  *validator.Validate
	newID     func() string
	now       func() time.Time
}

func NewAdminService(store QuizStore, responses ResponseStore) *AdminService {
	return &AdminService{
		store:     store,
		responses: responses,
		validate:  validator.New(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// ListQuizzes returns every quiz, including inactive ones.
func (s *AdminService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt) })
	return quizzes, nil
}

// GetQuiz returns a quiz with full grading metadata.
func (s *AdminService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.GetQuiz(ctx, quizID)
}

// CreateQuiz validates the input and stores a new quiz without questions.
func (s *AdminService) CreateQuiz(ctx context.Context, input QuizInput) (domain.Quiz, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Quiz{}, err
	}
	now := s.now()
	quiz := domain.Quiz{
		ID:                     s.newID(),
		Title:                  input.Title,
		Description:            input.Description,
		TimeLimitMinutes:       input.TimeLimitMinutes,
		PassingScore:           input.PassingScore,
		Active:                 input.Active,
		ShowResultsImmediately: input.ShowResultsImmediately,
		AllowRetakes:           input.AllowRetakes,
		MaxAttempts:            input.MaxAttempts,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// UpdateQuiz replaces a quiz's settings, keeping its questions.
func (s *AdminService) UpdateQuiz(ctx context.Context, quizID string, input QuizInput) (domain.Quiz, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Title = input.Title
	quiz.Description = input.Description
	quiz.TimeLimitMinutes = input.TimeLimitMinutes
	quiz.PassingScore = input.PassingScore
	quiz.Active = input.Active
	quiz.ShowResultsImmediately = input.ShowResultsImmediately
	quiz.AllowRetakes = input.AllowRetakes
	quiz.MaxAttempts = input.MaxAttempts
	quiz.UpdatedAt = s.now()
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz and its questions.
func (s *AdminService) DeleteQuiz(ctx context.Context, quizID string) error {
	return s.store.DeleteQuiz(ctx, quizID)
}

// AddQuestion appends a question to a quiz.
func (s *AdminService) AddQuestion(ctx context.Context, quizID string, input QuestionInput) (domain.Question, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Question{}, err
	}
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Question{}, err
	}
	question := s.buildQuestion(s.newID(), input)
	if question.Order == 0 {
		question.Order = len(quiz.Questions) + 1
	}
	quiz.Questions = append(quiz.Questions, question)
	sortQuestions(quiz.Questions)
	quiz.UpdatedAt = s.now()
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

// GetQuestion finds a question across all quizzes.
func (s *AdminService) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	_, question, err := s.findQuestion(ctx, questionID)
	return question, err
}

// UpdateQuestion replaces a question's content in place.
func (s *AdminService) UpdateQuestion(ctx context.Context, questionID string, input QuestionInput) (domain.Question, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Question{}, err
	}
	quiz, _, err := s.findQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	updated := s.buildQuestion(questionID, input)
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			if updated.Order == 0 {
				updated.Order = quiz.Questions[i].Order
			}
			quiz.Questions[i] = updated
			break
		}
	}
	sortQuestions(quiz.Questions)
	quiz.UpdatedAt = s.now()
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Question{}, err
	}
	return updated, nil
}

// DeleteQuestion removes a question from its quiz.
func (s *AdminService) DeleteQuestion(ctx context.Context, questionID string) error {
	quiz, _, err := s.findQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	kept := quiz.Questions[:0]
	for _, q := range quiz.Questions {
		if q.ID != questionID {
			kept = append(kept, q)
		}
	}
	quiz.Questions = kept
	quiz.UpdatedAt = s.now()
	return s.store.SaveQuiz(ctx, quiz)
}

// ReorderQuestions applies the given ID order to a quiz's questions.
// IDs not in the quiz are rejected; questions missing from the list keep
// their relative order after the listed ones.
func (s *AdminService) ReorderQuestions(ctx context.Context, quizID string, questionIDs []string) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	position := make(map[string]int, len(questionIDs))
	for i, id := range questionIDs {
		if _, ok := quiz.QuestionByID(id); !ok {
			return domain.Quiz{}, domain.ErrQuestionNotFound
		}
		position[id] = i + 1
	}
	next := len(questionIDs) + 1
	for i := range quiz.Questions {
		if pos, ok := position[quiz.Questions[i].ID]; ok {
			quiz.Questions[i].Order = pos
		} else {
			quiz.Questions[i].Order = next
			next++
		}
	}
	sortQuestions(quiz.Questions)
	quiz.UpdatedAt = s.now()
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ListResponses returns stored results, optionally filtered by quiz.
func (s *AdminService) ListResponses(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.responses.ListResults(ctx, quizID)
}

func (s *AdminService) buildQuestion(id string, input QuestionInput) domain.Question {
	question := domain.Question{
		ID:          id,
		Text:        input.Text,
		Type:        input.Type,
		Order:       input.Order,
		Points:      input.Points,
		Required:    input.Required,
		Explanation: input.Explanation,
	}
	if input.Type.Selectable() {
		for _, opt := range input.Options {
			question.Options = append(question.Options, domain.Option{
				ID:      s.newID(),
				Text:    opt.Text,
				Correct: opt.Correct,
				Order:   opt.Order,
			})
		}
	}
	return question
}

func (s *AdminService) findQuestion(ctx context.Context, questionID string) (domain.Quiz, domain.Question, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, domain.Question{}, err
	}
	for _, quiz := range quizzes {
		if question, ok := quiz.QuestionByID(questionID); ok {
			return quiz, question, nil
		}
	}
	return domain.Quiz{}, domain.Question{}, domain.ErrQuestionNotFound
}

func sortQuestions(questions []domain.Question) {
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
}
