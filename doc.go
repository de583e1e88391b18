// Package await provides composable asynchronous-computation
// primitives: three task flavors with different start and sharing
// semantics, a one-shot event, and a mutual-exclusion lock whose
// acquisition suspends a computation instead of blocking a goroutine.
//
// # Asynchronous Functions
//
// An asynchronous function is written as a chain of [Step] functions.
// A step runs until it returns an [Outcome], built with the methods of
// its [Frame]: complete with a value, fail with an error, transition
// to another step, or suspend on an [Awaitable] and resume into the
// next step once it is ready:
//
//	t := await.Run(func(fr *await.Frame[int]) await.Outcome[int] {
//		return fr.Await(&event).Then(func(fr *await.Frame[int]) await.Outcome[int] {
//			return fr.Complete(42)
//		})
//	})
//
// The suspension points are awaiting a task, an event, or the mutex.
// If the awaited thing is already ready, the next step runs
// immediately and the frame never suspends.
//
// # Task Flavors
//
// [Run] starts the body eagerly, on the calling goroutine, up to its
// first suspension point; the returned [Task] admits one consumer.
// [RunLazy] defers the body until the first await; a [LazyTask] that
// is never awaited never runs. [RunShared] (and [Share], which
// promotes an existing task) produce a [SharedTask]: reference-counted,
// any number of consumers, the body still runs exactly once.
//
// Retrieval is explicit: awaiting a task waits for completion only,
// and the Result method reports the stored value or failure. [Bind]
// combines the two, propagating a stored failure into the awaiting
// frame. Errors are values here; a panic inside a step is captured as
// a [PanicError] and stored as the frame's failure rather than
// unwinding through the resumer.
//
// # Scheduling
//
// This package schedules nothing and creates no goroutines. To suspend
// is to return control to whoever resumed the frame; to resume is to
// invoke the stored continuation, which happens on whatever goroutine
// completed the producer: the same one for synchronous completions,
// or the goroutine calling [Event.Set] or [Mutex.Unlock] otherwise.
// Any execution substrate can drive these primitives; [Wait] bridges
// to ordinary blocking code.
//
// # Concurrency
//
// The attach/complete race of an eager task and the set/await race of
// an event are closed with a single compare-and-swap on a shared cell,
// so exactly one resumption occurs even when producer and consumer run
// on different goroutines. The mutex waiter queue and the shared-task
// waiter list are mutated under the same discipline and need no
// separate lock. Contract violations (a second consumer on a
// single-consumer primitive, unlocking an unheld mutex, using a fully
// released shared task) panic rather than corrupt state.
package await
