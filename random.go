package extraTree

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Source is the randomness drawn on while growing a tree: one shuffle of the
// feature pool and one row draw per candidate split. *rand.Rand satisfies it.
//
// A Source is not safe for concurrent use. Give every concurrent build its own
// Source, or share one wrapped by Locked.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSource returns a Source seeded with seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewSource(seed))
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

// Locked wraps src so it can be shared between goroutines.
func Locked(src Source) Source {
	return &lockedSource{src: src}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Intn(n)
}

func (s *lockedSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Shuffle(n, swap)
}
