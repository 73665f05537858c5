package services

import (
	"math/rand"
	"sync"
	"time"
)

// Random is the source of randomness used for tie-breaks and exercise choice
type Random interface {
	// Intn returns a non-negative pseudo-random number in [0,n). It panics if n <= 0.
	Intn(n int) int
	// Int63 returns a non-negative pseudo-random 63-bit integer.
	Int63() int64
}

// lockedRand is a Random safe for concurrent use
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom creates a Random seeded with "seed"
func NewRandom(seed int64) Random {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededRandom creates a Random seeded from the current time
func NewTimeSeededRandom() Random {
	return NewRandom(time.Now().UnixNano())
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *lockedRand) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Int63()
}
