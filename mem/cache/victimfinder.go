package cache

import "math/rand"

// A VictimFinder decides which way of a full set should be evicted.
type VictimFinder interface {
	FindVictim(c *Cache, index int) int
}

// RandomVictimFinder evicts a uniformly random way.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a victim finder that draws from rng. Caches
// that share rng share its sequence.
func NewRandomVictimFinder(rng *rand.Rand) *RandomVictimFinder {
	return &RandomVictimFinder{rng: rng}
}

// FindVictim returns a random way of the set at index.
func (f *RandomVictimFinder) FindVictim(c *Cache, _ int) int {
	return f.rng.Intn(c.numWays)
}
