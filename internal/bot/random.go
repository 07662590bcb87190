package bot

import (
	"math/rand/v2"
	"sync"
)

// Random is the source of the uniform draws the bot uses to break ties.
type Random interface {
	// IntN returns a value in [0, n). Callers never pass n <= 0.
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRandom draws from the process-wide math/rand/v2 source.
var DefaultRandom Random = globalRandom{}

type seededRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRandom returns a reproducible source that is safe for concurrent use.
func NewSeededRandom(seed uint64) Random {
	return &seededRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRandom) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// pick returns a uniformly chosen element of cells. cells must not be empty.
func pick(rng Random, cells []int) int {
	return cells[rng.IntN(len(cells))]
}
