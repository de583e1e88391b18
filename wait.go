package await

import "context"

// Wait blocks the calling goroutine until aw is ready or ctx is done,
// and reports ctx.Err() in the latter case. It is the boundary for
// callers that are not written in suspend/resume style, such as the
// runtime driving these primitives or an ordinary goroutine collecting
// a final result.
//
// For single-consumer awaitables, Wait occupies the one consumer slot.
// If ctx expires first, the slot stays occupied: the registered
// continuation cannot be withdrawn, it just resumes into a no-op.
func Wait(ctx context.Context, aw Awaitable) error {
	done := make(chan struct{})
	if !aw.register(&waiter{resume: func() { close(done) }}) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitResult blocks until t is ready, then retrieves its result.
func WaitResult[T any](ctx context.Context, t Future[T]) (T, error) {
	if err := Wait(ctx, t); err != nil {
		var zero T
		return zero, err
	}
	return t.Result()
}
