package await

import "sync/atomic"

type action int

const (
	_ action = iota
	doSuspend
	doTransition
	doComplete
	doFail
)

// A waiter is the continuation of a suspended computation: an opaque
// resumption handle plus an intrusive link for waiter queues.
type waiter struct {
	resume func()
	next   *waiter
}

// settled marks a consumer cell, or a waiter list, whose producer has
// already completed. Registering against it must not suspend.
var settled = new(waiter)

// An Awaitable is anything a [Frame] can suspend on: a [Task], a
// [LazyTask], a [SharedTask], an [*Event], a [*Mutex], or the
// aggregate returned by [Join].
type Awaitable interface {
	// register records w to be resumed when the awaitable becomes
	// ready, and reports whether the caller actually suspended.
	// A false return means the awaitable is already ready and
	// the caller proceeds without suspending.
	register(w *waiter) bool
}

// A Step is one segment of an asynchronous function: the code between
// two suspension points. A step runs until it returns an [Outcome]
// telling the frame what to do next: suspend on an [Awaitable],
// transition to another step, or complete with a value or a failure.
//
// Steps of a frame never run concurrently with each other; a step runs
// on whichever goroutine resumed the frame.
type Step[T any] func(fr *Frame[T]) Outcome[T]

// A Frame is the heap-resident activation record of an asynchronous
// function producing a value of type T. It holds the pending step, the
// result slot, and the continuation of the one consumer awaiting it.
//
// Frames are created by [Run], [RunLazy] and [RunShared]; a Step
// receives its own frame as the argument and uses it to construct
// the returned [Outcome].
type Frame[T any] struct {
	step     Step[T]
	w        waiter                 // continuation handed to awaitables
	consumer atomic.Pointer[waiter] // nil, the registered consumer, or settled
	value    T
	err      error
	defers   []func()
}

func newFrame[T any](f Step[T]) *Frame[T] {
	fr := &Frame[T]{step: must(f)}
	fr.w.resume = fr.run
	return fr
}

// run executes steps until the frame suspends or completes.
// It is also the frame's own continuation: resuming a suspended frame
// reenters run on the resumer's goroutine.
func (fr *Frame[T]) run() {
	for {
		var out Outcome[T]
		if v, stack, ok := catch(func() { out = fr.step(fr) }); !ok {
			out = Outcome[T]{action: doFail, err: &PanicError{Value: v, Stack: stack}}
		}

		switch out.action {
		case doTransition:
			fr.step = must(out.step)
		case doSuspend:
			// The next step must be in place before registering:
			// the producer may resume the frame, possibly from
			// another goroutine, before register returns.
			fr.step = must(out.step)
			if out.aw.register(&fr.w) {
				return
			}
		case doComplete:
			fr.settle(out.value, nil)
			return
		case doFail:
			fr.settle(out.value, out.err)
			return
		default:
			panic("await: internal error: unknown action")
		}
	}
}

// settle stores the result, runs deferred cleanups in LIFO order, and
// closes the consumer cell. The swap on the cell guarantees that
// exactly one of {consumer registration, producer completion} resumes
// the consumer, whichever of the two observes the other already done.
func (fr *Frame[T]) settle(v T, err error) {
	fr.value, fr.err = v, err
	for len(fr.defers) != 0 {
		i := len(fr.defers) - 1
		f := fr.defers[i]
		fr.defers = fr.defers[:i]
		if v, stack, ok := catch(f); !ok && fr.err == nil {
			fr.err = &PanicError{Value: v, Stack: stack}
		}
	}
	fr.defers = nil
	if w := fr.consumer.Swap(settled); w != nil {
		w.resume()
	}
}

// register publishes w as the frame's one consumer.
// Implements the completion race of an eagerly-started frame: a single
// compare-and-swap against the cell decides whether the consumer
// suspends or proceeds because completion already happened.
func (fr *Frame[T]) register(w *waiter) bool {
	for {
		switch p := fr.consumer.Load(); p {
		case settled:
			return false
		case nil:
			if fr.consumer.CompareAndSwap(nil, w) {
				return true
			}
		default:
			panic("await: task already has a consumer")
		}
	}
}

func (fr *Frame[T]) ready() bool {
	return fr.consumer.Load() == settled
}

func (fr *Frame[T]) result() (T, error) {
	return fr.value, fr.err
}

// An Outcome is the return value of a [Step]. It determines what the
// frame does next. Outcomes are created with the methods of [Frame]
// and [Pending], never constructed directly.
type Outcome[T any] struct {
	action action
	aw     Awaitable
	step   Step[T]
	value  T
	err    error
}

// Pending is the return type of [Frame.Await]: an intermediate value
// that must be turned into an [Outcome] with one of its methods before
// returning from a [Step].
type Pending[T any] struct {
	aw Awaitable
}

// Await returns a [Pending] that will suspend fr on aw. If aw is
// already ready, the next step runs immediately without suspension.
//
// Awaiting a task this way only waits for its completion; it does not
// retrieve the result and never reports the task's stored failure.
// Use [Bind] (or the task's Result method) to observe the result.
func (fr *Frame[T]) Await(aw Awaitable) Pending[T] {
	if aw == nil {
		panic("await: nil Awaitable")
	}
	return Pending[T]{aw: aw}
}

// Then returns an [Outcome] that resumes into next once the awaited
// [Awaitable] is ready.
func (p Pending[T]) Then(next Step[T]) Outcome[T] {
	return Outcome[T]{action: doSuspend, aw: p.aw, step: must(next)}
}

// End returns an [Outcome] that completes the frame with the zero
// value of T once the awaited [Awaitable] is ready.
func (p Pending[T]) End() Outcome[T] {
	return p.Then(func(fr *Frame[T]) Outcome[T] {
		var zero T
		return fr.Complete(zero)
	})
}

// Complete returns an [Outcome] that completes the frame with v.
// The value is stored in the frame's result slot exactly once.
func (fr *Frame[T]) Complete(v T) Outcome[T] {
	return Outcome[T]{action: doComplete, value: v}
}

// Fail returns an [Outcome] that completes the frame with a failure.
// The error is stored at its point of origin and reported to every
// consumer that retrieves the result.
func (fr *Frame[T]) Fail(err error) Outcome[T] {
	if err == nil {
		panic("await: Fail called with nil error")
	}
	return Outcome[T]{action: doFail, err: err}
}

// Transition returns an [Outcome] that makes the frame work on next
// immediately, without suspending.
func (fr *Frame[T]) Transition(next Step[T]) Outcome[T] {
	return Outcome[T]{action: doTransition, step: must(next)}
}

// Defer adds a cleanup to run when the frame completes, on every
// completion path: normal completion, failure, and a captured panic.
// Deferred cleanups run in last-in-first-out order, before the
// consumer is resumed.
//
// Deferring an unlock is how a [Mutex] acquisition is scoped to
// the frame that holds it:
//
//	return fr.Await(&mu).Then(func(fr *Frame[T]) Outcome[T] {
//		fr.Defer(mu.Unlock)
//		...
//	})
func (fr *Frame[T]) Defer(f func()) {
	if fr.ready() {
		panic("await: frame has already completed")
	}
	if f == nil {
		return
	}
	fr.defers = append(fr.defers, f)
}

// Void is the result type of asynchronous functions that produce no
// value.
type Void struct{}

func must[T any](s Step[T]) Step[T] {
	if s == nil {
		panic("await: nil Step")
	}
	return s
}
