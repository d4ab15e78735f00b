package pipeline

import "sync"

// Board holds the most recently completed Result. Runs that overlap publish
// in completion order, so the last one to finish wins.
type Board struct {
	mu     sync.RWMutex
	latest *Result
	count  uint64
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Publish(res *Result) {
	if res == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = res
	b.count++
}

// Latest returns the last published Result, or nil if nothing was published yet.
func (b *Board) Latest() *Result {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

// Published is the number of results published so far.
func (b *Board) Published() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}
