package httpcache

import (
	"fmt"
	"sync"
	"time"
)

// Result is the materialized outcome of one request execution, shared
// verbatim with every request that joined the same in-flight ticket.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

type ticket struct {
	done   chan struct{}
	result *Result
	err    error
}

// Coordinator collapses concurrent identical requests: the first arrival
// for a fingerprint becomes the leader and executes the handler, later
// arrivals block on its ticket and receive the same result. Tickets
// linger for a grace window after completion so a burst whose tail lands
// just after the leader finishes still joins instead of re-executing.
type Coordinator struct {
	mu      sync.Mutex
	tickets map[string]*ticket
	grace   time.Duration
}

func NewCoordinator(grace time.Duration) *Coordinator {
	return &Coordinator{
		tickets: make(map[string]*ticket),
		grace:   grace,
	}
}

// Join executes produce for the first caller of a fingerprint and hands
// its result to every concurrent caller of the same fingerprint. The
// second return value reports whether this caller shared another
// execution's result rather than producing its own.
func (co *Coordinator) Join(fingerprint string, produce func() (*Result, error)) (*Result, bool, error) {
	co.mu.Lock()
	if t, ok := co.tickets[fingerprint]; ok {
		co.mu.Unlock()
		<-t.done
		return t.result, true, t.err
	}
	t := &ticket{done: make(chan struct{})}
	co.tickets[fingerprint] = t
	co.mu.Unlock()

	completed := false
	defer func() {
		if !completed {
			// The handler panicked. Fail the ticket so joiners do not
			// hang, then let the panic continue to the recovery layer.
			t.err = fmt.Errorf("request execution panicked")
			co.finish(fingerprint, t)
		}
	}()

	t.result, t.err = produce()
	completed = true
	co.finish(fingerprint, t)
	return t.result, false, t.err
}

// finish releases a ticket's waiters and schedules its removal after the
// grace window.
func (co *Coordinator) finish(fingerprint string, t *ticket) {
	close(t.done)
	time.AfterFunc(co.grace, func() {
		co.mu.Lock()
		if co.tickets[fingerprint] == t {
			delete(co.tickets, fingerprint)
		}
		co.mu.Unlock()
	})
}

// InFlight reports how many tickets are currently held, including those
// inside their post-completion grace window.
func (co *Coordinator) InFlight() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.tickets)
}
