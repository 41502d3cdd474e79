package domain

import (
	"math/rand/v2"
	"sync"
)

// Random is the source of uniform variates behind every noise term.
type Random interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// DefaultRandom returns the process-wide generator. It is safe for concurrent use
// and is not reproducible.
func DefaultRandom() Random {
	return globalRandom{}
}

// lockedRandom serializes access to a seeded generator, which is not safe for
// concurrent use on its own.
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRandom returns a reproducible generator that is safe for concurrent use.
func NewSeededRandom(seed uint64) Random {
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
