package await

// A Task is a handle to an eagerly-started asynchronous computation
// producing a value of type T. At most one consumer may await it.
//
// The computation begins inside [Run], on the calling goroutine, and
// runs up to its first suspension point before Run returns. The frame
// is owned by the handle; dropping an unfinished task abandons the
// frame, which is defined behavior: the body simply never resumes and
// the garbage collector reclaims it.
//
// The zero Task has no backing frame. It is ready, awaiting it does
// not suspend, and Result reports [ErrBrokenPromise].
type Task[T any] struct {
	fr *Frame[T]
}

// Run invokes f as a new asynchronous computation and returns a
// [Task] for it. The body runs synchronously up to its first
// suspension point; side effects made before that point are visible
// by the time Run returns.
func Run[T any](f Step[T]) Task[T] {
	fr := newFrame(f)
	fr.run()
	return Task[T]{fr: fr}
}

// IsReady reports whether the task has completed. Awaiting a ready
// task does not suspend.
func (t Task[T]) IsReady() bool {
	return t.fr == nil || t.fr.ready()
}

// Result returns the value the computation produced, or its stored
// failure. The same stored value is returned on every call; Go has no
// move semantics, so there is no moved-from state to guard against.
//
// Result must not be called before the task is ready; doing so is a
// contract violation and panics. For a task with no backing frame it
// reports [ErrBrokenPromise].
func (t Task[T]) Result() (T, error) {
	if t.fr == nil {
		var zero T
		return zero, ErrBrokenPromise
	}
	if !t.fr.ready() {
		panic("await: task is not ready")
	}
	return t.fr.result()
}

// register implements [Awaitable]. The consumer publishes its
// continuation into the frame's cell with a compare-and-swap; the
// producer's completion swaps the same cell. Exactly one side observes
// the other having already happened and performs the resumption, so
// the attach/complete race resolves to exactly one resumption even
// when completion happens on another goroutine.
func (t Task[T]) register(w *waiter) bool {
	if t.fr == nil {
		return false
	}
	return t.fr.register(w)
}

// A Future is the consumer-side surface shared by the three task
// flavors: it can be awaited, polled for readiness, and asked for its
// result once ready.
type Future[T any] interface {
	Awaitable
	IsReady() bool
	Result() (T, error)
}

// Bind suspends fr on t and, once t completes, passes the produced
// value to next. A stored failure is not passed to next: it propagates
// into fr, failing it with the same error, so failures flow from
// consumer to consumer the way a re-raised exception would.
func Bind[T, U any](fr *Frame[U], t Future[T], next func(fr *Frame[U], v T) Outcome[U]) Outcome[U] {
	if next == nil {
		panic("await: nil Step")
	}
	return fr.Await(t).Then(func(fr *Frame[U]) Outcome[U] {
		v, err := t.Result()
		if err != nil {
			return fr.Fail(err)
		}
		return next(fr, v)
	})
}
