package server

import (
	"errors"
	"net/http"

	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/session"
)

// errorStatus maps session and table errors to an HTTP status and a short
// machine-readable code.
func errorStatus(err error) (int, string) {
	var actionErr *game.ActionError
	switch {
	case errors.Is(err, game.ErrInvalidPlayerCount):
		return http.StatusBadRequest, "invalid_player_count"
	case errors.Is(err, session.ErrBotSeat):
		return http.StatusForbidden, "bot_seat"
	case errors.As(err, &actionErr):
		return http.StatusConflict, "invalid_action"
	case errors.Is(err, session.ErrUnknownHand):
		return http.StatusNotFound, "unknown_hand"
	case errors.Is(err, session.ErrNoCoach):
		return http.StatusServiceUnavailable, "no_coach"
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "closed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
