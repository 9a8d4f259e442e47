package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// handleWebSocket streams the game state to the client after every change
// and accepts the same commands as the HTTP endpoints.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer func() { _ = conn.Close() }() // Ignore close errors during cleanup

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	logger := s.logger.With("game", sess.ID, "remote", r.RemoteAddr)
	logger.Debug("Client connected")
	defer logger.Debug("Client disconnected")

	errs := make(chan error, 8)
	go s.readCommands(ctx, cancel, conn, sess, errs)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	state := sess.State()
	if err := writeMessage(conn, ServerMessage{Type: MessageState, State: &state}); err != nil {
		return
	}
	for {
		var err error
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-updates:
			state := sess.State()
			err = writeMessage(conn, ServerMessage{Type: MessageState, State: &state})
		case cmdErr := <-errs:
			err = writeMessage(conn, ServerMessage{Type: MessageError, Error: errorData(cmdErr)})
		case <-ping.C:
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		}
		if err != nil {
			logger.Debug("write failed", "error", err)
			return
		}
	}
}

// readCommands applies client commands until the connection closes.
func (s *Server) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *Session, errs chan<- error) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "game", sess.ID, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := s.applyCommand(ctx, sess, data); err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Server) applyCommand(ctx context.Context, sess *Session, data []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	switch msg.Type {
	case MessageAction:
		if msg.Action == nil {
			return fmt.Errorf("%w: action message without action", errBadRequest)
		}
		return sess.HumanAct(ctx, *msg.Action)
	case MessageNextHand:
		return sess.NextHand(ctx)
	default:
		return fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
	}
}

func writeMessage(conn *websocket.Conn, msg ServerMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
