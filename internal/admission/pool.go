// Package admission bounds how many requests may occupy the heavy parts
// of the media path at once. Pools reject on arrival instead of queueing:
// a caller that cannot get a slot immediately is turned away with 429 so
// load never piles up behind slow uploads.
package admission

import "sync"

// Pool is a fixed-capacity admission gate over a slot channel.
type Pool struct {
	name  string
	slots chan struct{}
}

func NewPool(name string, capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{
		name:  name,
		slots: make(chan struct{}, capacity),
	}
}

func (p *Pool) Name() string { return p.name }

// TryAcquire claims a slot without waiting. It returns a release func and
// true on success, or nil and false when the pool is full. The release
// func is safe to call more than once.
func (p *Pool) TryAcquire() (func(), bool) {
	select {
	case p.slots <- struct{}{}:
	default:
		return nil, false
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-p.slots })
	}, true
}

// Active reports how many slots are currently held.
func (p *Pool) Active() int { return len(p.slots) }

// Capacity reports the pool's slot count.
func (p *Pool) Capacity() int { return cap(p.slots) }
