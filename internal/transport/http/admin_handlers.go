package http

import (
	"fmt"
	"net/http"
	"strings"

	"quizhub-service/internal/app"
	"quizhub-service/internal/auth"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type reorderRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1"`
}

// HandleLogin checks admin credentials and issues a token pair.
func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid login payload: %w", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	pair, err := a.tokens.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// HandleRefresh exchanges a refresh token for a fresh pair, exactly once.
// On reuse the client gets 401 and must log in again; there is no retry loop.
func (a *API) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid refresh payload: %w", err))
		return
	}
	pair, err := a.tokens.Refresh(req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// RequireAuth guards admin handlers with a Bearer access token.
func (a *API) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, auth.ErrInvalidToken)
			return
		}
		if _, err := a.tokens.Verify(token); err != nil {
			writeError(w, err)
			return
		}
		next(w, r)
	}
}

// HandleAdminListQuizzes lists every quiz, including inactive ones.
func (a *API) HandleAdminListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.admin.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// HandleAdminGetQuiz returns a quiz with grading metadata.
func (a *API) HandleAdminGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.admin.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// HandleAdminCreateQuiz creates a quiz from validated input.
func (a *API) HandleAdminCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var input app.QuizInput
	if err := decode(r, &input); err != nil {
		writeError(w, fmt.Errorf("invalid quiz payload: %w", err))
		return
	}
	quiz, err := a.admin.CreateQuiz(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// HandleAdminUpdateQuiz replaces a quiz's settings.
func (a *API) HandleAdminUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var input app.QuizInput
	if err := decode(r, &input); err != nil {
		writeError(w, fmt.Errorf("invalid quiz payload: %w", err))
		return
	}
	quiz, err := a.admin.UpdateQuiz(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// HandleAdminDeleteQuiz removes a quiz.
func (a *API) HandleAdminDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := a.admin.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdminAddQuestion appends a question to a quiz.
func (a *API) HandleAdminAddQuestion(w http.ResponseWriter, r *http.Request) {
	var input app.QuestionInput
	if err := decode(r, &input); err != nil {
		writeError(w, fmt.Errorf("invalid question payload: %w", err))
		return
	}
	question, err := a.admin.AddQuestion(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// HandleAdminGetQuestion returns one question.
func (a *API) HandleAdminGetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := a.admin.GetQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// HandleAdminUpdateQuestion replaces a question's content.
func (a *API) HandleAdminUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var input app.QuestionInput
	if err := decode(r, &input); err != nil {
		writeError(w, fmt.Errorf("invalid question payload: %w", err))
		return
	}
	question, err := a.admin.UpdateQuestion(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// HandleAdminDeleteQuestion removes a question from its quiz.
func (a *API) HandleAdminDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := a.admin.DeleteQuestion(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdminReorderQuestions applies a new question order to a quiz.
func (a *API) HandleAdminReorderQuestions(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid reorder payload: %w", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := a.admin.ReorderQuestions(r.Context(), r.PathValue("id"), req.QuestionIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// HandleAdminListResponses lists stored results, optionally per quiz.
func (a *API) HandleAdminListResponses(w http.ResponseWriter, r *http.Request) {
	results, err := a.admin.ListResponses(r.Context(), r.URL.Query().Get("quiz_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
