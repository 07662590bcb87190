package game

import (
	"errors"
	"fmt"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// BoardSize is the number of cells on the board.
	BoardSize = 9
)

var (
	ErrInvalidBoard  = errors.New("invalid board")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrOutOfBounds   = errors.New("cell index out of bounds")
	ErrCellOccupied  = errors.New("cell already occupied")
	ErrGameOver      = errors.New("game already finished")
	ErrNotYourTurn   = errors.New("not player's turn")
)

// winningCombinations lists the lines that win the game: rows, then columns, then diagonals.
var winningCombinations = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// WinningCombinations returns a copy of the winning lines in table order.
// Callers that take the first match rely on that order.
func WinningCombinations() [8][3]int {
	return winningCombinations
}

// Valid reports whether m is one of the two player marks.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// Opponent returns the other player's mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

// ParseMark converts a string to a player mark.
func ParseMark(s string) (PlayerMark, error) {
	m := PlayerMark(s)
	if !m.Valid() {
		return None, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
	}
	return m, nil
}

// Board is the 3x3 grid stored row-major: 0,1,2 top, 3,4,5 middle, 6,7,8 bottom.
type Board [BoardSize]PlayerMark

// ParseBoard builds a Board from a slice, rejecting anything that is not nine valid cells.
func ParseBoard(cells []PlayerMark) (Board, error) {
	var b Board
	if len(cells) != BoardSize {
		return b, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidBoard, BoardSize, len(cells))
	}
	copy(b[:], cells)
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Validate checks that every cell holds None, X or O.
func (b Board) Validate() error {
	for i, cell := range b {
		if cell != None && !cell.Valid() {
			return fmt.Errorf("%w: cell %d holds %q", ErrInvalidBoard, i, cell)
		}
	}
	return nil
}

// MoveCount returns the number of occupied cells, regardless of side.
func (b Board) MoveCount() int {
	count := 0
	for _, cell := range b {
		if cell != None {
			count++
		}
	}
	return count
}

// EmptyCells returns the indices of all empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range b {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// IndexOf returns the first cell holding mark, or -1.
func (b Board) IndexOf(mark PlayerMark) int {
	for i, cell := range b {
		if cell == mark {
			return i
		}
	}
	return -1
}

// IsFull reports whether no empty cell is left.
func (b Board) IsFull() bool {
	return b.MoveCount() == BoardSize
}

// Winner returns the mark holding a complete line and that line, or None and nil.
func (b Board) Winner() (PlayerMark, []int) {
	for _, combination := range winningCombinations {
		first := b[combination[0]]
		if first != None && first == b[combination[1]] && first == b[combination[2]] {
			return first, combination[:]
		}
	}
	return None, nil
}

// Game is a single round on one board. X always moves first.
type Game struct {
	Board       Board      `json:"board"`
	CurrentTurn PlayerMark `json:"next"`
	Winner      PlayerMark `json:"winner"`
	WinningLine []int      `json:"winningLine,omitempty"`
	Draw        bool       `json:"draw"`
}

func NewGame() *Game {
	return &Game{CurrentTurn: PlayerX}
}

// Over reports whether the round has a winner or ended in a draw.
func (g *Game) Over() bool {
	return g.Winner != None || g.Draw
}

// Move places mark at index and advances the turn.
func (g *Game) Move(mark PlayerMark, index int) error {
	if g.Over() {
		return ErrGameOver
	}
	if !mark.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlayer, mark)
	}
	if mark != g.CurrentTurn {
		return ErrNotYourTurn
	}
	if index < 0 || index >= BoardSize {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	if g.Board[index] != None {
		return fmt.Errorf("%w: %d", ErrCellOccupied, index)
	}

	g.Board[index] = mark

	if winner, line := g.Board.Winner(); winner != None {
		g.Winner = winner
		g.WinningLine = line
		g.CurrentTurn = None
		return nil
	}
	if g.Board.IsFull() {
		g.Draw = true
		g.CurrentTurn = None
		return nil
	}

	g.CurrentTurn = mark.Opponent()
	return nil
}

// Reset clears the board and gives the first move back to X.
func (g *Game) Reset() {
	*g = Game{CurrentTurn: PlayerX}
}
