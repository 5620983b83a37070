package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"scisoc-quiz-service/internal/app"
	"scisoc-quiz-service/internal/domain"
	"scisoc-quiz-service/internal/logging"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler streams leaderboard snapshots to connected clients.
type WSHandler struct {
	leaderboard *app.LeaderboardService
	upgrader    websocket.Upgrader
}

func NewWSHandler(leaderboard *app.LeaderboardService) *WSHandler {
	return &WSHandler{
		leaderboard: leaderboard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS pushes the top entries on connect and again after every stored
// result. Inbound frames are ignored; a read error ends the stream.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	limit := app.ParseLimit(r.URL.Query().Get("limit"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel, err := h.leaderboard.Subscribe(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				msg := outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: trimLeaderboard(update, limit)}
				if err := conn.WriteJSON(msg); err != nil {
					log.WithError(err).Debug("ws write error")
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-writerDone
}

func trimLeaderboard(lb domain.Leaderboard, limit int) domain.Leaderboard {
	if len(lb.Entries) > limit {
		lb.Entries = lb.Entries[:limit]
	}
	return lb
}
