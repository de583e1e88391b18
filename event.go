package await

import "sync/atomic"

// An Event is a one-shot gate: a single consumer may suspend on it,
// and one call to Set releases that consumer. Once set, an Event stays
// set; awaiting a set event does not suspend.
//
// Set may be called from a different goroutine than the one awaiting,
// concurrently with the consumer's registration: the cell is closed
// with the same atomic claim a [Task]'s completion uses, so exactly
// one resumption occurs regardless of which side wins.
//
// Only one consumer may be registered at a time; registering a second
// while the first is still suspended is a contract violation and
// panics.
//
// The zero Event is an unset event. An Event must not be copied after
// first use.
type Event struct {
	// state is nil while unset with no waiter, the registered
	// continuation while a consumer is suspended, or settled.
	state atomic.Pointer[waiter]
}

// Set fires the event, resuming the registered consumer if one is
// suspended. The consumer resumes on the calling goroutine. Calling
// Set again is a no-op; the event is one-shot and cannot signal twice.
func (e *Event) Set() {
	if w := e.state.Swap(settled); w != nil && w != settled {
		w.resume()
	}
}

// IsSet reports whether the event has fired.
func (e *Event) IsSet() bool {
	return e.state.Load() == settled
}

// register implements [Awaitable].
func (e *Event) register(w *waiter) bool {
	for {
		p := e.state.Load()
		if p == settled {
			return false
		}
		if p != nil {
			panic("await: event already has a consumer")
		}
		if e.state.CompareAndSwap(nil, w) {
			return true
		}
	}
}
