package models

import (
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
)

// MoveRequest asks for the computer's move on an arbitrary board.
type MoveRequest struct {
	Board      []game.PlayerMark `json:"board" binding:"required,len=9,dive,cell"`
	Player     game.PlayerMark   `json:"player" binding:"required,mark"`
	Difficulty string            `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// MoveResponse is the chosen cell and the rule that chose it.
type MoveResponse struct {
	Index int      `json:"index"`
	Rule  bot.Rule `json:"rule"`
}

// StartGameRequest defines the structure for starting a session.
type StartGameRequest struct {
	Mark       game.PlayerMark `json:"mark" binding:"required,mark"`
	Difficulty string          `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// PlayRequest is the human's move in a session.
type PlayRequest struct {
	Index *int `json:"index" binding:"required,min=0,max=8"`
}
