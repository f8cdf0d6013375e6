package http

import "net/http"

// NewRouter wires all endpoints onto a ServeMux.
func NewRouter(api *API, ws *WSHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public taking flow.
	mux.HandleFunc("GET /public/quizzes", api.HandleListQuizzes)
	mux.HandleFunc("GET /public/quizzes/{id}", api.HandleGetQuiz)
	mux.HandleFunc("POST /public/quizzes/{id}/submit", api.HandleSubmitQuiz)
	mux.HandleFunc("POST /public/quizzes/{id}/sessions", api.HandleStartSession)
	mux.HandleFunc("GET /public/sessions/{id}", api.HandleGetSession)
	mux.HandleFunc("PUT /public/sessions/{id}/answers/{questionID}", api.HandleRecordAnswer)
	mux.HandleFunc("POST /public/sessions/{id}/navigate", api.HandleNavigate)
	mux.HandleFunc("POST /public/sessions/{id}/submit", api.HandleSubmitSession)
	mux.HandleFunc("DELETE /public/sessions/{id}", api.HandleTeardownSession)
	mux.HandleFunc("GET /public/results/{sessionID}", api.HandleGetResult)
	mux.HandleFunc("GET /public/results/{sessionID}/page", api.HandleGetResultPage)
	mux.HandleFunc("GET /ws/sessions/{id}", ws.ServeSession)

	// Admin panel.
	mux.HandleFunc("POST /admin/login", api.HandleLogin)
	mux.HandleFunc("POST /admin/refresh", api.HandleRefresh)
	mux.HandleFunc("GET /admin/quizzes", api.RequireAuth(api.HandleAdminListQuizzes))
	mux.HandleFunc("POST /admin/quizzes", api.RequireAuth(api.HandleAdminCreateQuiz))
	mux.HandleFunc("GET /admin/quizzes/{id}", api.RequireAuth(api.HandleAdminGetQuiz))
	mux.HandleFunc("PUT /admin/quizzes/{id}", api.RequireAuth(api.HandleAdminUpdateQuiz))
	mux.HandleFunc("DELETE /admin/quizzes/{id}", api.RequireAuth(api.HandleAdminDeleteQuiz))
	mux.HandleFunc("POST /admin/quizzes/{id}/questions", api.RequireAuth(api.HandleAdminAddQuestion))
	mux.HandleFunc("POST /admin/quizzes/{id}/reorder-questions", api.RequireAuth(api.HandleAdminReorderQuestions))
	mux.HandleFunc("GET /admin/questions/{id}", api.RequireAuth(api.HandleAdminGetQuestion))
	mux.HandleFunc("PUT /admin/questions/{id}", api.RequireAuth(api.HandleAdminUpdateQuestion))
	mux.HandleFunc("DELETE /admin/questions/{id}", api.RequireAuth(api.HandleAdminDeleteQuestion))
	mux.HandleFunc("GET /admin/responses", api.RequireAuth(api.HandleAdminListResponses))

	return mux
}
