package ai

import (
    "math/rand"
    "sync"
    "time"
)

// Source is the randomness used by the Easy and Normal policies.
type Source interface {
    // Intn returns a uniform int in [0, n).
    Intn(n int) int
    // Float64 returns a uniform float in [0, 1).
    Float64() float64
}

type lockedSource struct {
    mu  sync.Mutex
    rnd *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed.
func NewSource(seed int64) Source {
    return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.rnd.Intn(n)
}

func (s *lockedSource) Float64() float64 {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.rnd.Float64()
}

var (
    defaultOnce sync.Once
    defaultSrc  Source
)

// DefaultSource returns the process-wide Source, seeded from the clock.
func DefaultSource() Source {
    defaultOnce.Do(func() {
        defaultSrc = NewSource(time.Now().UnixNano())
    })
    return defaultSrc
}
