package command

import (
	"slices"
	"sync"
)

// orderLocks serializes work per order number. Entries are dropped once no
// goroutine holds or waits for them.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newOrderLocks() *orderLocks {
	return &orderLocks{locks: make(map[string]*orderLock)}
}

// lock acquires the given numbers in sorted order and returns the release func.
func (l *orderLocks) lock(numbers ...string) func() {
	numbers = slices.Clone(numbers)
	slices.Sort(numbers)
	numbers = slices.Compact(numbers)

	held := make([]*orderLock, 0, len(numbers))
	for _, n := range numbers {
		l.mu.Lock()
		ol, ok := l.locks[n]
		if !ok {
			ol = &orderLock{}
			l.locks[n] = ol
		}
		ol.refs++
		l.mu.Unlock()

		ol.mu.Lock()
		held = append(held, ol)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.locks, numbers[i])
			}
			l.mu.Unlock()
		}
	}
}
