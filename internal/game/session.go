package game

import "time"

// Session is a human-vs-computer game as stored between requests.
// Only the current round is kept; finished rounds are overwritten on restart.
type Session struct {
	ID           string     `json:"id"`
	Human        PlayerMark `json:"human"`
	Computer     PlayerMark `json:"computer"`
	Difficulty   string     `json:"difficulty"`
	Game         Game       `json:"game"`
	ComputerMove *int       `json:"computerMove,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewSession creates a session where the human plays human and the computer the other mark.
func NewSession(id string, human PlayerMark, difficulty string) *Session {
	return &Session{
		ID:         id,
		Human:      human,
		Computer:   human.Opponent(),
		Difficulty: difficulty,
		Game:       *NewGame(),
	}
}

// ComputerToMove reports whether the next move belongs to the computer.
func (s *Session) ComputerToMove() bool {
	return !s.Game.Over() && s.Game.CurrentTurn == s.Computer
}
