package await

import "sync/atomic"

// Join returns an [Awaitable] that becomes ready once every aw has
// completed. Join registers as a consumer of each constituent
// immediately, so for single-consumer awaitables it takes their one
// consumer slot. Constituents that are already ready count as
// completed. Join of nothing is ready at once.
//
// Like the constituents it aggregates, the returned awaitable admits
// a single consumer.
func Join(aws ...Awaitable) Awaitable {
	j := new(joined)
	// The extra count keeps the aggregate from settling while
	// registration is still in progress.
	j.pending.Store(int64(len(aws)) + 1)
	for _, aw := range aws {
		if aw == nil {
			panic("await: nil Awaitable")
		}
		if !aw.register(&waiter{resume: j.arrive}) {
			j.pending.Add(-1)
		}
	}
	j.arrive()
	return j
}

type joined struct {
	pending atomic.Int64
	state   atomic.Pointer[waiter] // same cell protocol as Event
}

func (j *joined) arrive() {
	if j.pending.Add(-1) != 0 {
		return
	}
	if w := j.state.Swap(settled); w != nil && w != settled {
		w.resume()
	}
}

func (j *joined) register(w *waiter) bool {
	for {
		p := j.state.Load()
		if p == settled {
			return false
		}
		if p != nil {
			panic("await: join already has a consumer")
		}
		if j.state.CompareAndSwap(nil, w) {
			return true
		}
	}
}
