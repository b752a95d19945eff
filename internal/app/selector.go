package app

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// Selector draws quotes uniformly at random. Draws are independent, so the
// same quote may come up twice in a row.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector over src. A nil src is seeded from the clock.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}

	return &Selector{rng: rand.New(src)}
}

// Pick returns a random quote whose category matches filter, or false when
// no quote matches. FilterAll matches every quote.
func (s *Selector) Pick(quotes []domain.Quote, filter string) (domain.Quote, bool) {
	candidates := domain.FilterByCategory(quotes, filter)
	if len(candidates) == 0 {
		return domain.Quote{}, false
	}

	s.mu.Lock()
	i := s.rng.IntN(len(candidates))
	s.mu.Unlock()

	return candidates[i], true
}
