package await_test

import (
	"context"
	"sync"
	"testing"

	"github.com/awaitkit/await"
	"github.com/stretchr/testify/require"
)

// TestMutexFIFOHandoff is the canonical ordering scenario: four tasks
// each lock the mutex, wait on their own private event, then increment
// a shared counter. Releasing the events in order must drive the
// counter through 1, 2, 3, 4 in strict queue order.
func TestMutexFIFOHandoff(t *testing.T) {
	var (
		mu    await.Mutex
		value int
	)

	f := func(e *await.Event) await.Task[await.Void] {
		return await.Run(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
			return fr.Await(&mu).Then(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
				fr.Defer(mu.Unlock)
				return fr.Await(e).Then(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
					value++
					return fr.Complete(await.Void{})
				})
			})
		})
	}

	var a, b, c, d await.Event

	t1 := f(&a)
	require.False(t, t1.IsReady())
	require.Equal(t, 0, value)

	t2 := f(&b)
	t3 := f(&c)

	a.Set()
	require.Equal(t, 1, value)

	t4 := f(&d)

	b.Set()
	require.Equal(t, 2, value)

	c.Set()
	require.Equal(t, 3, value)

	d.Set()
	require.Equal(t, 4, value)

	require.True(t, t1.IsReady())
	require.True(t, t2.IsReady())
	require.True(t, t3.IsReady())
	require.True(t, t4.IsReady())
}

func TestMutexImmediateAcquisition(t *testing.T) {
	var mu await.Mutex

	acquired := false
	task := await.Run(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
		return fr.Await(&mu).Then(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
			fr.Defer(mu.Unlock)
			acquired = true
			return fr.Complete(await.Void{})
		})
	})

	// A free mutex is acquired without suspending.
	require.True(t, task.IsReady())
	require.True(t, acquired)

	// And it was released when the frame completed.
	require.True(t, mu.TryLock())
	mu.Unlock()
}

func TestMutexTryLock(t *testing.T) {
	var mu await.Mutex

	require.True(t, mu.TryLock())
	require.False(t, mu.TryLock())

	mu.Unlock()
	require.True(t, mu.TryLock())
	mu.Unlock()
}

func TestMutexUnlockNotLockedPanics(t *testing.T) {
	var mu await.Mutex

	require.PanicsWithValue(t, "await: mutex is not locked", mu.Unlock)
}

func TestMutexReleasedOnFailure(t *testing.T) {
	var mu await.Mutex

	task := await.Run(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
		return fr.Await(&mu).Then(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
			fr.Defer(mu.Unlock)
			panic("kaboom")
		})
	})

	require.True(t, task.IsReady())
	_, err := task.Result()
	require.Error(t, err)

	// The deferred unlock ran despite the panic.
	require.True(t, mu.TryLock())
	mu.Unlock()
}

// TestMutexMutualExclusionStress issues lock/unlock cycles from several
// goroutines at once. The mutex itself is the only synchronization for
// the counters; the race detector will catch any window where two
// frames hold the lock at the same time.
func TestMutexMutualExclusionStress(t *testing.T) {
	var (
		mu     await.Mutex
		inside int
		total  int
	)

	const (
		goroutines = 8
		perG       = 50
	)

	ctx := context.Background()

	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range perG {
				task := await.Run(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
					return fr.Await(&mu).Then(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
						fr.Defer(mu.Unlock)
						inside++
						if inside != 1 {
							panic("two holders at once")
						}
						inside--
						total++
						return fr.Complete(await.Void{})
					})
				})
				if err := await.Wait(ctx, task); err != nil {
					t.Error(err)
					return
				}
				if _, err := task.Result(); err != nil {
					t.Error(err)
					return
				}
			}
		})
	}
	wg.Wait()

	require.Equal(t, goroutines*perG, total)
}
