package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/store"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// Client to server
	MessageAction   MessageType = "action"
	MessageNextHand MessageType = "next_hand"

	// Server to client
	MessageState MessageType = "state"
	MessageError MessageType = "error"
)

// ClientMessage is a command sent over the websocket.
type ClientMessage struct {
	Type   MessageType  `json:"type"`
	Action *game.Action `json:"action,omitempty"`
}

// ServerMessage is pushed to websocket clients.
type ServerMessage struct {
	Type  MessageType   `json:"type"`
	State *SessionState `json:"state,omitempty"`
	Error *ErrorData    `json:"error,omitempty"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateGameRequest is the body of POST /games. Every field is optional.
type CreateGameRequest struct {
	Name string `json:"name,omitempty"`
	Seed *int64 `json:"seed,omitempty"`
}

// CreateGameResponse is returned by POST /games.
type CreateGameResponse struct {
	ID    string       `json:"id"`
	Seed  int64        `json:"seed"`
	State SessionState `json:"state"`
}

var errBadRequest = errors.New("bad request")

// errorStatus maps an error to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errBotFailed):
		return http.StatusInternalServerError, "bot_failed"
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusUnprocessableEntity, "illegal_action"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusConflict, "game_over"
	case errors.Is(err, game.ErrHandInProgress):
		return http.StatusConflict, "hand_in_progress"
	case errors.Is(err, game.ErrGameHalted):
		return http.StatusConflict, "halted"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func errorData(err error) *ErrorData {
	_, code := errorStatus(err)
	return &ErrorData{Code: code, Message: err.Error()}
}
