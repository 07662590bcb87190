package game

import "math/rand/v2"

// RandomMark picks X or O with equal probability.
func RandomMark() PlayerMark {
	if rand.IntN(2) == 0 {
		return PlayerX
	}
	return PlayerO
}
