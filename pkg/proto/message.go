package proto

import "ctchen222/tictactoe-bot/internal/game"

// Message types exchanged over the websocket.
const (
	TypeAssignment = "assignment"
	TypeUpdate     = "update"
	TypeError      = "error"
	TypeMove       = "move"
	TypeRestart    = "restart"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move restart"`
	Position *int   `json:"position,omitempty" validate:"required_if=Type move,omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type         string            `json:"type" validate:"required"`
	Reason       string            `json:"reason,omitempty"`
	Board        []game.PlayerMark `json:"board,omitempty"`
	Next         game.PlayerMark   `json:"next,omitempty"`
	Winner       game.PlayerMark   `json:"winner,omitempty"`
	WinningLine  []int             `json:"winningLine,omitempty"`
	Draw         bool              `json:"draw,omitempty"`
	ComputerMove *int              `json:"computerMove,omitempty"`
}

// PlayerAssignmentMessage informs a player of their assigned mark.
type PlayerAssignmentMessage struct {
	Type       string          `json:"type"`
	SessionID  string          `json:"sessionId"`
	Mark       game.PlayerMark `json:"mark"`
	Difficulty string          `json:"difficulty"`
}

// NewUpdateMessage describes the current state of a session.
func NewUpdateMessage(s *game.Session) *ServerToClientMessage {
	return &ServerToClientMessage{
		Type:         TypeUpdate,
		Board:        s.Game.Board[:],
		Next:         s.Game.CurrentTurn,
		Winner:       s.Game.Winner,
		WinningLine:  s.Game.WinningLine,
		Draw:         s.Game.Draw,
		ComputerMove: s.ComputerMove,
	}
}

// NewErrorMessage reports a rejected client message.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
