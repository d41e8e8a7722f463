package random

import (
	"math/rand"
	"sync"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_picker.go github.com/datkingvn/pvoil-sub000/internal/random Picker

// Picker chooses uniformly random elements for question draws
type Picker interface {
	// Sample returns k distinct indexes in [0, n) in random order.
	// It returns nil when k > n or k <= 0.
	Sample(n, k int) []int
}

// Source provides random sampling backed by math/rand
type Source struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the random source
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new random source
func New(cfg *Config) *Source {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Source{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Sample performs a partial Fisher-Yates shuffle over [0, n)
func (s *Source) Sample(n, k int) []int {
	if k <= 0 || k > n {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.random.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	return idx[:k]
}
