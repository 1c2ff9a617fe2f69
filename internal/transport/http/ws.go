package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// serveProgressWS streams the user's progress updates over a websocket. The
// first message is a profile snapshot, sent after the subscription is live,
// so clients that saw it are guaranteed not to miss subsequent updates.
// The client sends nothing meaningful; its read pump only detects disconnects.
func (h *Handler) serveProgressWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	user := userID(r)
	updates, cancel := h.engine.Subscribe(user)
	defer cancel()

	snapshot, err := h.engine.Profile(r.Context(), user)
	if err != nil {
		h.log.Warn("ws profile snapshot failed", zap.Error(err))
		return
	}
	if err := conn.WriteJSON(outboundMessage[any]{Type: "profile", Payload: snapshot}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[any]{Type: "progress", Payload: update}); err != nil {
				h.log.Warn("ws write error", zap.Error(err))
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
