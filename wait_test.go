package await_test

import (
	"context"
	"sync"
	"testing"

	"github.com/awaitkit/await"
	"github.com/stretchr/testify/require"
)

func TestWaitReadyAwaitable(t *testing.T) {
	task := await.Run(end)

	require.NoError(t, await.Wait(context.Background(), task))
}

func TestWaitBlocksUntilCompletion(t *testing.T) {
	var event await.Event

	task := await.Run(func(fr *await.Frame[int]) await.Outcome[int] {
		return fr.Await(&event).Then(func(fr *await.Frame[int]) await.Outcome[int] {
			return fr.Complete(9)
		})
	})

	var wg sync.WaitGroup
	wg.Go(event.Set)

	v, err := await.WaitResult(context.Background(), task)
	require.NoError(t, err)
	require.Equal(t, 9, v)

	wg.Wait()
}

func TestWaitContextDone(t *testing.T) {
	var event await.Event

	task := await.Run(func(fr *await.Frame[await.Void]) await.Outcome[await.Void] {
		return fr.Await(&event).End()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := await.Wait(ctx, task)
	require.ErrorIs(t, err, context.Canceled)
}
