package response

import (
	"context"
	"errors"
	"net/http"

	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/repository"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// FromError maps a domain error onto an HTTP status.
func FromError(err error) Error {
	return NewError(false, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidBoard),
		errors.Is(err, game.ErrInvalidPlayer),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, bot.ErrUnknownDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, repository.ErrSessionExists),
		errors.Is(err, repository.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, bot.ErrNoLegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
