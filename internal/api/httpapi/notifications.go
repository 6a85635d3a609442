package httpapi

import (
	"errors"
	"net/http"
	"time"

	"topmarketingjobs/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const notificationsTable = "notifications"

const (
	wsWriteDeadline = 5 * time.Second
	wsReadDeadline  = 60 * time.Second
	wsPingInterval  = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS layer and the access token
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())

	list, err := s.store.ListNotifications(r.Context(), session.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not load notifications")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())

	err := s.store.MarkNotificationRead(r.Context(), session.UserID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not update notification")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleNotificationStream pushes the session user's new notifications over a
// websocket until either side goes away.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())

	if s.realtime == nil {
		writeError(w, http.StatusServiceUnavailable, "realtime disabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	messages := make(chan []byte, 16)

	unsubscribe, err := s.realtime.Subscribe(ctx, notificationsTable, session.UserID, func(payload []byte) {
		select {
		case messages <- payload:
		default:
			s.logger.Warn("dropping notification for slow client", zap.String("user_id", session.UserID))
		}
	})
	if err != nil {
		s.logger.Error("failed to subscribe", zap.String("user_id", session.UserID), zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(wsWriteDeadline))
		return
	}
	defer unsubscribe()

	// the client never sends data; reading drives pong handling and detects close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Info("notification stream opened", zap.String("user_id", session.UserID))

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			s.logger.Info("notification stream closed", zap.String("user_id", session.UserID))
			return
		case <-ctx.Done():
			return
		case payload := <-messages:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteDeadline)); err != nil {
				return
			}
		}
	}
}
