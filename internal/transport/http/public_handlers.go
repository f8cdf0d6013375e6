package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

type startSessionRequest struct {
	ParticipantName  string `json:"participant_name" validate:"required,max=100"`
	ParticipantEmail string `json:"participant_email" validate:"required,email"`
}

type startSessionResponse struct {
	Session app.SessionView      `json:"session"`
	Quiz    app.PublicQuizDetail `json:"quiz"`
}

type recordAnswerRequest struct {
	SelectedOptionID string `json:"selected_option_id"`
	TextAnswer       string `json:"text_answer"`
}

type navigateRequest struct {
	Action string `json:"action" validate:"required,oneof=next previous jump"`
	Index  int    `json:"index"`
}

type submitQuizRequest struct {
	ParticipantName  string          `json:"participant_name" validate:"required,max=100"`
	ParticipantEmail string          `json:"participant_email" validate:"required,email"`
	Answers          []domain.Answer `json:"answers"`
}

// HandleListQuizzes serves the public catalog of active quizzes.
func (a *API) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.take.ListActiveQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// HandleGetQuiz serves one quiz with questions, grading metadata stripped.
func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.take.GetPublicQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// HandleSubmitQuiz scores a complete one-shot submission.
func (a *API) HandleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitQuizRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid submit payload: %w", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	participant := domain.Participant{Name: strings.TrimSpace(req.ParticipantName), Email: strings.TrimSpace(req.ParticipantEmail)}
	result, err := a.take.SubmitOneShot(r.Context(), r.PathValue("id"), participant, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleGetResult serves a stored result for reload/deep-link.
func (a *API) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	result, err := a.take.GetResult(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetResultPage serves the rendered review view of a result.
func (a *API) HandleGetResultPage(w http.ResponseWriter, r *http.Request) {
	result, err := a.take.GetResult(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.RenderResult(result))
}

// HandleStartSession opens a taking session for a quiz. Participant info is
// captured here once; preview=true starts a session that can never submit.
func (a *API) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	preview := r.URL.Query().Get("preview") == "true"

	var req startSessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid session payload: %w", err))
		return
	}
	if !preview {
		if err := a.validate.Struct(req); err != nil {
			writeError(w, err)
			return
		}
	}

	quizID := r.PathValue("id")
	participant := domain.Participant{Name: strings.TrimSpace(req.ParticipantName), Email: strings.TrimSpace(req.ParticipantEmail)}
	session, err := a.take.StartSession(r.Context(), quizID, participant, preview)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := a.take.GetPublicQuiz(r.Context(), quizID)
	if err != nil && !errors.Is(err, domain.ErrQuizInactive) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{Session: session.View(), Quiz: detail})
}

// HandleRecordAnswer stores or replaces one answer in a live session.
func (a *API) HandleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req recordAnswerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid answer payload: %w", err))
		return
	}
	view, err := a.take.RecordAnswer(r.Context(), r.PathValue("id"), r.PathValue("questionID"), req.SelectedOptionID, req.TextAnswer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleNavigate moves the session's question cursor.
func (a *API) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, fmt.Errorf("invalid navigate payload: %w", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	view, err := a.take.Navigate(r.Context(), r.PathValue("id"), req.Action, req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGetSession serves the current session snapshot.
func (a *API) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.take.Session(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

// HandleSubmitSession triggers the manual submit path.
func (a *API) HandleSubmitSession(w http.ResponseWriter, r *http.Request) {
	result, err := a.take.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleTeardownSession stops and removes a session.
func (a *API) HandleTeardownSession(w http.ResponseWriter, r *http.Request) {
	a.take.Teardown(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
