package await

import "sync/atomic"

// A SharedTask is a reference-counted handle to an eagerly-started
// asynchronous computation whose completion may be observed by any
// number of consumers, concurrently or sequentially. The underlying
// body runs exactly once; every handle observes the same terminal
// state, the same stored value and the same stored failure.
//
// Handles are compared with ==: two handles are equal exactly when
// they refer to the same underlying frame. Two independently-created
// shared tasks with equal results are not equal.
//
// The control block holds the frame and its result alive until the
// reference count drops to zero; see [SharedTask.Clone] and
// [SharedTask.Release].
//
// The zero SharedTask has no backing frame: it is ready, awaiting it
// does not suspend, and Result reports [ErrBrokenPromise].
type SharedTask[T any] struct {
	ctl *sharedFrame[T]
}

// sharedFrame is the control block: a reference count, the shared
// frame, and a lock-free list of waiting continuations. The list is
// a LIFO stack while the computation runs and the settled sentinel
// afterwards; fanout swaps in the sentinel and resumes the waiters in
// registration order.
type sharedFrame[T any] struct {
	refs    atomic.Int64
	waiters atomic.Pointer[waiter]
	w       waiter // occupies the frame's single consumer slot
	fr      *Frame[T]
}

// RunShared invokes f eagerly, like [Run], and returns a shared handle
// to it with a reference count of one.
func RunShared[T any](f Step[T]) SharedTask[T] {
	return Share(Run(f))
}

// Share promotes an ordinary task into a shared one, transferring
// ownership of its frame into a new control block. The control block
// takes the task's single consumer slot, so t is consumed: the
// original handle must not be awaited afterwards.
func Share[T any](t Task[T]) SharedTask[T] {
	if t.fr == nil {
		return SharedTask[T]{}
	}
	ctl := &sharedFrame[T]{fr: t.fr}
	ctl.refs.Store(1)
	ctl.w.resume = ctl.fanout
	if !t.fr.register(&ctl.w) {
		ctl.fanout()
	}
	return SharedTask[T]{ctl: ctl}
}

// fanout runs when the underlying frame completes: it closes the
// waiter list and resumes every registered consumer, in the order
// they registered.
func (s *sharedFrame[T]) fanout() {
	p := s.waiters.Swap(settled)
	var head *waiter
	for p != nil {
		next := p.next
		p.next = head
		head = p
		p = next
	}
	for head != nil {
		w := head
		head = head.next
		w.next = nil
		w.resume()
	}
}

// IsReady reports whether the computation has completed and its
// waiters have been resumed. A handle with no backing frame is ready.
func (t SharedTask[T]) IsReady() bool {
	return t.ctl == nil || t.ctl.waiters.Load() == settled
}

// Result returns the stored value or the stored failure. Every handle
// receives the same stored value; it is never moved out, so reads by
// one consumer cannot invalidate another's.
//
// Result panics if the task is not ready, or if every handle has
// already been released. A handle with no backing frame reports
// [ErrBrokenPromise].
func (t SharedTask[T]) Result() (T, error) {
	ctl := t.ctl
	if ctl == nil {
		var zero T
		return zero, ErrBrokenPromise
	}
	fr := ctl.fr
	if fr == nil {
		panic("await: shared task already released")
	}
	if !fr.ready() {
		panic("await: task is not ready")
	}
	return fr.result()
}

// Clone returns a new handle to the same underlying computation,
// incrementing the reference count.
func (t SharedTask[T]) Clone() SharedTask[T] {
	if t.ctl != nil && t.ctl.refs.Add(1) <= 1 {
		panic("await: shared task already released")
	}
	return t
}

// Release drops this handle's reference. When the count reaches zero
// the control block discards the frame, and with it the stored result;
// this happens exactly once, never while a handle is still held.
// Releasing more handles than were created panics.
//
// Releasing the zero SharedTask is a no-op.
func (t SharedTask[T]) Release() {
	ctl := t.ctl
	if ctl == nil {
		return
	}
	switch n := ctl.refs.Add(-1); {
	case n > 0:
	case n == 0:
		ctl.fr = nil
	default:
		panic("await: shared task released too many times")
	}
}

// register implements [Awaitable]. Consumers push onto the waiter list
// with a compare-and-swap; completion swaps the list for the settled
// sentinel. A consumer that loses the race to completion observes the
// sentinel and proceeds without suspending.
func (t SharedTask[T]) register(w *waiter) bool {
	ctl := t.ctl
	if ctl == nil {
		return false
	}
	for {
		p := ctl.waiters.Load()
		if p == settled {
			return false
		}
		w.next = p
		if ctl.waiters.CompareAndSwap(p, w) {
			return true
		}
	}
}
