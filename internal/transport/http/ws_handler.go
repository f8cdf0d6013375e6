package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizhub-service/internal/app"
)

// WSHandler streams session events (countdown ticks, state transitions,
// submission) to the taking UI.
type WSHandler struct {
	take     *app.TakeService
	upgrader websocket.Upgrader
}

func NewWSHandler(take *app.TakeService) *WSHandler {
	return &WSHandler{
		take: take,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string           `json:"type"`
	Payload app.SessionEvent `json:"payload"`
}

type wsErrorMessage struct {
	Type    string       `json:"type"`
	Payload errorPayload `json:"payload"`
}

// ServeSession upgrades the request and pumps session events until the
// session ends or the client goes away.
func (h *WSHandler) ServeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel, err := h.take.Subscribe(sessionID)
	if err != nil {
		_ = conn.WriteJSON(wsErrorMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	// Reader detects client close; writes happen only from this goroutine.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: event.Type, Payload: event}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-clientGone:
			return
		}
	}
}
