package debounce

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastCallFires(t *testing.T) {
	d := New(30 * time.Millisecond)
	var calls, last atomic.Int32

	for i := 1; i <= 5; i++ {
		i := int32(i)
		d.Do(func(context.Context) {
			calls.Add(1)
			last.Store(i)
		})
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestTask_CancelBeforeFire(t *testing.T) {
	d := New(20 * time.Millisecond)
	var fired atomic.Bool
	task := d.Do(func(context.Context) { fired.Store(true) })
	task.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Error(t, task.Context().Err())
}

func TestDebouncer_SupersededTaskSeesCancellation(t *testing.T) {
	d := New(time.Millisecond)
	started := make(chan struct{})
	stale := make(chan error, 1)

	d.Do(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		stale <- ctx.Err()
	})
	<-started
	d.Do(func(context.Context) {})

	select {
	case err := <-stale:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("in-flight task was not cancelled")
	}
}

func TestDebouncer_StopDisables(t *testing.T) {
	d := New(5 * time.Millisecond)
	var fired atomic.Bool
	d.Do(func(context.Context) { fired.Store(true) })
	d.Stop()
	d.Do(func(context.Context) { fired.Store(true) })

	time.Sleep(40 * time.Millisecond)
	assert.False(t, fired.Load())
}
