package steps

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_UnmountInvalidatesGeneration(t *testing.T) {
	var l Lifecycle

	ctx, gen := l.Begin(context.Background())
	assert.True(t, l.Current(gen))
	assert.NoError(t, ctx.Err())

	l.End()
	assert.False(t, l.Current(gen))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	_, gen2 := l.Begin(context.Background())
	assert.False(t, l.Current(gen))
	assert.True(t, l.Current(gen2))
}

func TestLifecycle_RemountEndsPrevious(t *testing.T) {
	var l Lifecycle

	first, gen := l.Begin(context.Background())
	_, _ = l.Begin(context.Background())

	assert.Error(t, first.Err())
	assert.False(t, l.Current(gen))
}

func TestLifecycle_ContextRequiresMount(t *testing.T) {
	var l Lifecycle

	_, _, err := l.Context()
	assert.ErrorIs(t, err, ErrNotMounted)

	_, want := l.Begin(context.Background())
	_, gen, err := l.Context()
	require.NoError(t, err)
	assert.Equal(t, want, gen)
}

func TestLifecycle_Wait(t *testing.T) {
	var l Lifecycle
	done := make(chan struct{})

	l.Go(func() { close(done) })
	l.Wait()

	select {
	case <-done:
	default:
		t.Fatal("Wait returned before goroutine finished")
	}
}

func TestLifecycle_GoAndWaitConcurrently(t *testing.T) {
	var l Lifecycle
	var started, finished sync.WaitGroup

	started.Add(2)
	finished.Add(2)
	go func() {
		defer finished.Done()
		started.Done()
		for i := 0; i < 500; i++ {
			l.Go(func() {})
		}
	}()
	go func() {
		defer finished.Done()
		started.Done()
		for i := 0; i < 500; i++ {
			l.Wait()
		}
	}()
	finished.Wait()

	l.Wait()
	l.wmu.Lock()
	defer l.wmu.Unlock()
	assert.Zero(t, l.running)
}

func TestLifecycle_WaitBlocksUntilRelease(t *testing.T) {
	var l Lifecycle
	release := make(chan struct{})
	l.Go(func() { <-release })

	waited := make(chan struct{})
	go func() {
		l.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while work was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after work finished")
	}
}
