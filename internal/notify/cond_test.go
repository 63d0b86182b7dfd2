package notify_test

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/tieredpool/internal/notify"
)

// waiter blocks on c until woken, reporting the outcome on the returned
// channel.
func waiter(ctx context.Context, mu *sync.Mutex, c *notify.Cond) <-chan error {
	done := make(chan error, 1)
	go func() {
		mu.Lock()
		err := c.Wait(ctx)
		mu.Unlock()
		done <- err
	}()
	return done
}

func TestCond_Signal(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		c := notify.NewCond(&mu)

		first := waiter(ctx, &mu, c)
		synctest.Wait()
		second := waiter(ctx, &mu, c)
		synctest.Wait()

		mu.Lock()
		require.Equal(t, 2, c.Len())
		c.Signal()
		mu.Unlock()
		synctest.Wait()

		select {
		case err := <-first:
			require.NoError(t, err)
		default:
			t.Fatal("expected the longest waiter to be woken")
		}
		select {
		case <-second:
			t.Fatal("expected the second waiter to remain blocked")
		default:
		}

		mu.Lock()
		c.Signal()
		mu.Unlock()
		require.NoError(t, <-second)
	})
}

func TestCond_SignalWithoutWaiters(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	c := notify.NewCond(&mu)

	mu.Lock()
	c.Signal()
	c.Broadcast()
	assert.Equal(t, 0, c.Len())
	mu.Unlock()
}

func TestCond_Broadcast(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		c := notify.NewCond(&mu)

		waiters := make([]<-chan error, 3)
		for i := range waiters {
			waiters[i] = waiter(ctx, &mu, c)
		}
		synctest.Wait()

		mu.Lock()
		c.Broadcast()
		mu.Unlock()

		for _, w := range waiters {
			require.NoError(t, <-w)
		}
		assert.Equal(t, 0, c.Len())
	})
}

func TestCond_WaitCancelled(t *testing.T) {
	t.Parallel()

	t.Run("while waiting", func(t *testing.T) {
		t.Parallel()

		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())

			var mu sync.Mutex
			c := notify.NewCond(&mu)

			done := waiter(ctx, &mu, c)
			synctest.Wait()

			cancel()
			require.ErrorIs(t, <-done, context.Canceled)

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 0, c.Len())
		})
	})

	t.Run("before waiting", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var mu sync.Mutex
		c := notify.NewCond(&mu)

		mu.Lock()
		err := c.Wait(ctx)
		assert.Equal(t, 0, c.Len())
		mu.Unlock()

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCond_CancelledWaiterHandsOffSignal(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var mu sync.Mutex
		c := notify.NewCond(&mu)

		firstCtx, cancelFirst := context.WithCancel(ctx)
		first := waiter(firstCtx, &mu, c)
		synctest.Wait()
		second := waiter(ctx, &mu, c)
		synctest.Wait()

		// Both outcomes race inside the first waiter. Either it consumes the
		// signal, or it is cancelled and the second waiter gets it.
		mu.Lock()
		c.Signal()
		cancelFirst()
		mu.Unlock()
		synctest.Wait()

		if err := <-first; err == nil {
			select {
			case <-second:
				t.Fatal("expected a single wakeup")
			default:
			}
			return
		}

		select {
		case err := <-second:
			require.NoError(t, err)
		default:
			t.Fatal("signal was lost by the cancelled waiter")
		}
	})
}
