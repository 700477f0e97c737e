package heuristics

import (
	"math/rand"
	"sync"
)

// Jitter supplies the bounded randomness used for fallback trait scores,
// emotional ranges and phrase selection. Intn returns a value in [0, n).
type Jitter interface {
	Intn(n int) int
}

type noJitter struct{}

func (noJitter) Intn(int) int { return 0 }

// NoJitter always returns 0, which makes every heuristic fully deterministic.
var NoJitter Jitter = noJitter{}

type randJitter struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomJitter returns a goroutine-safe Jitter seeded with seed.
func NewRandomJitter(seed int64) Jitter {
	return &randJitter{r: rand.New(rand.NewSource(seed))}
}

func (j *randJitter) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.r.Intn(n)
}

func jitterOrNone(j Jitter) Jitter {
	if j == nil {
		return NoJitter
	}
	return j
}

// Pick returns a jittered element of items, or fallback when items is empty.
func Pick(j Jitter, items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	idx := jitterOrNone(j).Intn(len(items))
	if idx < 0 || idx >= len(items) {
		idx = 0
	}
	return items[idx]
}
