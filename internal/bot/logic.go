package bot

import (
	"errors"
	"fmt"

	"ctchen222/tictactoe-bot/internal/game"
)

// Difficulty selects how much of the decision ladder the bot uses.
type Difficulty string

const (
	// Easy plays a random empty cell.
	Easy Difficulty = "easy"
	// Medium wins if it can, blocks if it must, otherwise plays randomly.
	Medium Difficulty = "medium"
	// Hard adds the opening heuristics on top of Medium.
	Hard Difficulty = "hard"
)

// ParseDifficulty maps a configuration or request value to a Difficulty. Empty means Hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Hard, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownDifficulty, s)
	}
}

// Rule names the step of the ladder that produced a move.
type Rule string

const (
	RuleWin      Rule = "win"
	RuleBlock    Rule = "block"
	RuleCenter   Rule = "center"
	RuleCorner   Rule = "corner"
	RuleAdjacent Rule = "adjacent"
	RuleRandom   Rule = "random"
)

// Decision is a chosen cell and the rule that chose it.
type Decision struct {
	Index int  `json:"index"`
	Rule  Rule `json:"rule"`
}

var (
	ErrNoLegalMove       = errors.New("no legal move: board is full")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

const centerCell = 4

var corners = [...]int{0, 2, 6, 8}

// FindPriorityMoves returns, in WinningCombinations order, the empty cell of every line where
// mark already holds the other two cells. A cell closing two lines appears twice.
// mark must be X or O.
func FindPriorityMoves(board game.Board, mark game.PlayerMark) []int {
	var moves []int
	for _, combination := range game.WinningCombinations() {
		count := 0
		for _, cell := range combination {
			if board[cell] == mark {
				count++
			}
		}
		if count != 2 {
			continue
		}
		for _, cell := range combination {
			if board[cell] == game.None {
				moves = append(moves, cell)
				break
			}
		}
	}
	return moves
}

// Selector picks the computer's next cell. It holds no game state between calls.
type Selector struct {
	rng             Random
	difficulty      Difficulty
	strictAdjacency bool
}

// Option configures a Selector.
type Option func(*Selector)

// WithDifficulty sets the ladder depth. Unknown values behave like Hard.
func WithDifficulty(d Difficulty) Option {
	return func(s *Selector) {
		s.difficulty = d
	}
}

// WithStrictAdjacency limits horizontal neighbours to the same row.
// Without it, 2 and 3 (and 5 and 6) count as neighbours.
func WithStrictAdjacency() Option {
	return func(s *Selector) {
		s.strictAdjacency = true
	}
}

// NewSelector returns a Hard selector drawing from rng, or from DefaultRandom when rng is nil.
func NewSelector(rng Random, opts ...Option) *Selector {
	if rng == nil {
		rng = DefaultRandom
	}
	s := &Selector{rng: rng, difficulty: Hard}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeMove returns the cell the computer should occupy next.
func (s *Selector) ComputeMove(board game.Board, computer game.PlayerMark) (int, error) {
	decision, err := s.Decide(board, computer)
	if err != nil {
		return -1, err
	}
	return decision.Index, nil
}

// Decide runs the ladder: win, block, opening heuristics, then a random empty cell.
func (s *Selector) Decide(board game.Board, computer game.PlayerMark) (Decision, error) {
	if !computer.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", game.ErrInvalidPlayer, computer)
	}
	if err := board.Validate(); err != nil {
		return Decision{}, err
	}
	empty := board.EmptyCells()
	if len(empty) == 0 {
		return Decision{}, ErrNoLegalMove
	}

	if s.difficulty == Easy {
		return Decision{Index: pick(s.rng, empty), Rule: RuleRandom}, nil
	}

	// 1. Win: take the first line the computer can complete
	if moves := FindPriorityMoves(board, computer); len(moves) > 0 {
		return Decision{Index: moves[0], Rule: RuleWin}, nil
	}

	// 2. Block: occupy the first line the opponent could complete
	if moves := FindPriorityMoves(board, computer.Opponent()); len(moves) > 0 {
		return Decision{Index: moves[0], Rule: RuleBlock}, nil
	}

	// 3. Opening heuristics
	if s.difficulty != Medium {
		if decision, ok := s.opening(board, computer); ok {
			return decision, nil
		}
	}

	// 4. Random: any empty cell
	return Decision{Index: pick(s.rng, empty), Rule: RuleRandom}, nil
}

func (s *Selector) opening(board game.Board, computer game.PlayerMark) (Decision, bool) {
	switch board.MoveCount() {
	case 1:
		if board[centerCell] != game.None {
			return Decision{Index: corners[s.rng.IntN(len(corners))], Rule: RuleCorner}, true
		}
		return Decision{Index: centerCell, Rule: RuleCenter}, true

	case 2, 3:
		first := board.IndexOf(computer)
		if first < 0 {
			// only on hand-built boards; no neighbours of a missing cell, fall through to random
			return Decision{}, false
		}
		var candidates []int
		for _, cell := range s.adjacentCells(first) {
			if board[cell] == game.None {
				candidates = append(candidates, cell)
			}
		}
		if len(candidates) > 0 {
			return Decision{Index: pick(s.rng, candidates), Rule: RuleAdjacent}, true
		}
	}
	return Decision{}, false
}

// adjacentCells returns cell-1, cell+1, cell-3, cell+3 in that order, dropping indices off the board.
func (s *Selector) adjacentCells(cell int) []int {
	cells := make([]int, 0, 4)
	for _, delta := range [...]int{-1, 1, -3, 3} {
		neighbour := cell + delta
		if neighbour < 0 || neighbour >= game.BoardSize {
			continue
		}
		if s.strictAdjacency && (delta == -1 || delta == 1) && neighbour/3 != cell/3 {
			continue
		}
		cells = append(cells, neighbour)
	}
	return cells
}

// ComputeMove runs a Hard selector over board for computer, drawing from rng.
func ComputeMove(board game.Board, computer game.PlayerMark, rng Random) (int, error) {
	return NewSelector(rng).ComputeMove(board, computer)
}

// CalculateNextMove determines the bot's next move based on the specified difficulty.
func CalculateNextMove(board game.Board, botMark game.PlayerMark, difficulty string) (int, error) {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		d = Hard
	}
	return NewSelector(DefaultRandom, WithDifficulty(d)).ComputeMove(board, botMark)
}
