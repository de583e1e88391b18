package await

import (
	"sync/atomic"

	"github.com/eapache/queue"
)

// lockedTag marks a mutex that is held with no newly-pushed waiters.
var lockedTag = new(waiter)

// A Mutex is a mutual-exclusion lock whose acquisition suspends the
// awaiting frame instead of blocking a goroutine. Acquisitions are
// granted in strict first-in-first-out arrival order, and a release
// hands the lock directly to the oldest waiter without an intermediate
// unlocked state, so no later arrival can steal it in between.
//
// A frame acquires the mutex by awaiting it:
//
//	return fr.Await(&mu).Then(func(fr *Frame[T]) Outcome[T] {
//		fr.Defer(mu.Unlock)
//		...
//	})
//
// If the mutex is free, acquisition completes without suspending.
// Deferring the unlock scopes the acquisition to the frame: the lock
// is released on every completion path, including failure.
//
// The zero Mutex is an unlocked mutex. A Mutex must not be copied
// after first use.
type Mutex struct {
	// state is nil when unlocked, lockedTag when held with no queued
	// waiters, or the head of a LIFO stack of continuations pushed by
	// suspending frames.
	state atomic.Pointer[waiter]
	// prepared holds continuations already detached from the stack,
	// oldest first. Only the current lock holder touches it, so it
	// needs no synchronization of its own.
	prepared *queue.Queue
}

// register implements [Awaitable]: awaiting the mutex acquires it.
// An unlocked mutex is taken with a single compare-and-swap and the
// frame proceeds without suspending; otherwise the continuation is
// pushed onto the stack and the frame suspends until handoff.
func (m *Mutex) register(w *waiter) bool {
	for {
		p := m.state.Load()
		if p == nil {
			if m.state.CompareAndSwap(nil, lockedTag) {
				return false
			}
			continue
		}
		if p == lockedTag {
			w.next = nil
		} else {
			w.next = p
		}
		if m.state.CompareAndSwap(p, w) {
			return true
		}
	}
}

// TryLock attempts to acquire m without suspending and reports whether
// it succeeded. It never overtakes queued waiters: a held mutex fails
// the attempt regardless of queue state.
func (m *Mutex) TryLock() bool {
	return m.state.CompareAndSwap(nil, lockedTag)
}

// Unlock releases m. If any frame is waiting, ownership transfers
// directly to the oldest waiter and its continuation runs on the
// calling goroutine, with the mutex logically locked throughout.
// With no waiters the mutex becomes unlocked.
//
// Unlock panics if m is not locked.
func (m *Mutex) Unlock() {
	if m.prepared == nil || m.prepared.Length() == 0 {
		for {
			p := m.state.Load()
			if p == nil {
				panic("await: mutex is not locked")
			}
			if p == lockedTag {
				if m.state.CompareAndSwap(lockedTag, nil) {
					return
				}
				continue
			}
			// Frames queued up while the lock was held: detach the
			// whole stack, leaving the mutex held, and file the
			// waiters in arrival order.
			if m.state.CompareAndSwap(p, lockedTag) {
				var head *waiter
				for p != nil {
					next := p.next
					p.next = head
					head = p
					p = next
				}
				if m.prepared == nil {
					m.prepared = queue.New()
				}
				for head != nil {
					next := head.next
					head.next = nil
					m.prepared.Add(head)
					head = next
				}
				break
			}
		}
	}
	m.prepared.Remove().(*waiter).resume()
}
