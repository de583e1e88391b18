package await

// A LazyTask is a handle to an asynchronous computation that does not
// begin executing until the first time a consumer awaits it. Its
// contract is otherwise that of [Task]: a single consumer, a single
// result slot, [ErrBrokenPromise] from a handle with no backing frame.
//
// If a LazyTask is never awaited, the body never runs at all; whatever
// the step closure captured is simply garbage-collected. That is the
// intended abandonment semantics, not a leak.
//
// Because the consumer's continuation is recorded before the body
// starts, completion always finds it in place and resumes it
// unconditionally; no atomic handoff is needed. The trade-off is that
// a body completing synchronously resumes the consumer by a nested
// call on the same stack, so a long chain of synchronously-completing
// lazy tasks grows the call stack proportionally. This is a documented
// limitation of the lazy flavor; use [Task] where it matters.
type LazyTask[T any] struct {
	fr *Frame[T]
}

// RunLazy wraps f as a lazy asynchronous computation. f is not called
// until the returned task is first awaited.
func RunLazy[T any](f Step[T]) LazyTask[T] {
	return LazyTask[T]{fr: newFrame(f)}
}

// IsReady reports whether the task has completed. A lazy task that has
// not been awaited yet is not ready; a task with no backing frame is.
func (t LazyTask[T]) IsReady() bool {
	return t.fr == nil || t.fr.ready()
}

// Result returns the value the computation produced, or its stored
// failure. It must not be called before the task is ready (panics),
// and reports [ErrBrokenPromise] for a task with no backing frame.
func (t LazyTask[T]) Result() (T, error) {
	if t.fr == nil {
		var zero T
		return zero, ErrBrokenPromise
	}
	if !t.fr.ready() {
		panic("await: task is not ready")
	}
	return t.fr.result()
}

// register implements [Awaitable]: recording the consumer is what
// starts the computation. The store into the consumer cell needs no
// compare-and-swap here; the body cannot complete before it starts,
// and it starts strictly after the store, on this goroutine.
func (t LazyTask[T]) register(w *waiter) bool {
	fr := t.fr
	if fr == nil {
		return false
	}
	switch p := fr.consumer.Load(); p {
	case settled:
		return false
	case nil:
		fr.consumer.Store(w)
		fr.run()
		return true
	default:
		panic("await: task already has a consumer")
	}
}
