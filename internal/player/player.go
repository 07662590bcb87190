package player

import (
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe-bot/internal/game"

	"github.com/gorilla/websocket"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is the human side of a session played over a websocket.
type Player struct {
	SessionID string
	Mark      game.PlayerMark
	Conn      Connection
}

func NewPlayer(conn Connection) *Player {
	return &Player{Conn: conn}
}

// Send writes v to the player as a JSON text frame.
func (p *Player) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}
