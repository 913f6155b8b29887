// Package debounce delays work until input settles, returning handles that can be
// cancelled explicitly.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Task is one scheduled call. Its context is cancelled when the task is
// superseded, cancelled, or its Debouncer is stopped.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer
}

// Context lets the scheduled function notice it went stale mid-flight.
func (t *Task) Context() context.Context { return t.ctx }

// Cancel stops the task if it has not fired and cancels its context either way.
func (t *Task) Cancel() {
	t.timer.Stop()
	t.cancel()
}

type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending *Task
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do cancels the previous task and schedules fn after the delay. After Stop, Do
// returns an already-cancelled task.
func (d *Debouncer) Do(fn func(ctx context.Context)) *Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{ctx: ctx, cancel: cancel}
	task.timer = time.AfterFunc(d.delay, func() {
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
	if d.stopped {
		task.Cancel()
		return task
	}
	d.pending = task
	return task
}

// Stop cancels the pending task and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}
