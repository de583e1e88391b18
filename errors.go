package await

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrBrokenPromise is reported when retrieving the result of a task
// that has no backing computation: a default-constructed handle, or
// one whose frame was abandoned before it completed.
var ErrBrokenPromise = errors.New("await: broken promise")

// A PanicError is the stored failure of a frame whose step panicked.
// The panic is captured at its point of origin, together with a stack
// trace, and reported to every consumer that retrieves the result.
type PanicError struct {
	Value any    // the value passed to panic
	Stack []byte // stack trace captured at the point of the panic
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("await: panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it was an error, so that captured
// error panics remain matchable with [errors.Is] and [errors.As].
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// catch runs f, capturing a panic along with its stack trace.
// Frames cannot survive runtime.Goexit; a test calling t.Fatal inside
// a step would silently lose the frame, so it is rejected loudly.
func catch(f func()) (v any, stack []byte, ok bool) {
	defer func() {
		if !ok {
			v = recover()
			if v == nil {
				panic("await: frame does not support runtime.Goexit()")
			}
			stack = debug.Stack()
		}
	}()
	f()
	return nil, nil, true
}
