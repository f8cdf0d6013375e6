package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"quizhub-service/internal/app"
	"quizhub-service/internal/auth"
	"quizhub-service/internal/domain"
)

// API bundles the HTTP handlers over the application services.
type API struct {
	take     *app.TakeService
	admin    *app.AdminService
	tokens   *auth.TokenManager
	validate *validator.Validate
}

func NewAPI(take *app.TakeService, admin *app.AdminService, tokens *auth.TokenManager) *API {
	return &API{
		take:     take,
		admin:    admin,
		tokens:   tokens,
		validate: validator.New(),
	}
}

type errorPayload struct {
	Message     string   `json:"message"`
	QuestionIDs []string `json:"question_ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	payload := errorPayload{Message: err.Error()}
	status := http.StatusInternalServerError

	var required *domain.RequiredUnansweredError
	var invalid validator.ValidationErrors
	var badJSON *json.SyntaxError
	var badField *json.UnmarshalTypeError
	switch {
	case errors.As(err, &required):
		status = http.StatusUnprocessableEntity
		payload.QuestionIDs = required.QuestionIDs
	case errors.As(err, &invalid),
		errors.As(err, &badJSON),
		errors.As(err, &badField),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrResultNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrSubmitInFlight),
		errors.Is(err, domain.ErrTimeExpired):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionClosed):
		status = http.StatusGone
	case errors.Is(err, domain.ErrQuizInactive),
		errors.Is(err, domain.ErrPreviewSession),
		errors.Is(err, domain.ErrMaxAttemptsReached),
		errors.Is(err, domain.ErrRetakesNotAllowed):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRefreshConsumed):
		status = http.StatusUnauthorized
	}

	writeJSON(w, status, payload)
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
