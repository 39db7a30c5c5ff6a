package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/model"
)

// Command is a request submitted to the executor. Implementations are plain data.
type Command interface {
	Describe() string
}

// Run is the handle of one submitted command
type Run struct {
	ID      string
	Command Command

	mu          sync.RWMutex
	status      model.TaskStatus
	lastMessage string
	result      batch.Result
	startedAt   time.Time
	finishedAt  time.Time

	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	onStopping func()
}

func newRun(parent context.Context, id string, cmd Command) *Run {
	ctx, cancel := context.WithCancel(parent)
	return &Run{
		ID:      id,
		Command: cmd,
		status:  model.TaskStatusPending,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Status returns the current lifecycle status
func (r *Run) Status() model.TaskStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// LastMessage returns the latest progress message
func (r *Run) LastMessage() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastMessage
}

// Result returns the batch result; valid once Done is closed
func (r *Run) Result() batch.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.result
}

// Done is closed when the run reached a finished status
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its result
func (r *Run) Wait() batch.Result {
	<-r.done
	return r.Result()
}

// Elapsed returns the running time so far, or the total once finished
func (r *Run) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.startedAt.IsZero() {
		return 0
	}
	if r.finishedAt.IsZero() {
		return time.Since(r.startedAt)
	}
	return r.finishedAt.Sub(r.startedAt)
}

// Cancel requests cancellation. It returns false when the run already finished.
func (r *Run) Cancel() bool {
	r.mu.Lock()
	if r.status.IsFinished() {
		r.mu.Unlock()
		return false
	}
	if r.status.IsActive() && r.status != model.TaskStatusStopping {
		r.status = model.TaskStatusStopping
		// queued under the lock so Stopping precedes the final status event
		if r.onStopping != nil {
			r.onStopping()
		}
	}
	r.mu.Unlock()

	r.cancel()
	return true
}

func (r *Run) setStatus(status model.TaskStatus) bool {
	return r.updateStatus(status, nil)
}

// updateStatus applies status and, when it changed, calls notify before
// releasing the lock
func (r *Run) updateStatus(status model.TaskStatus, notify func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.IsFinished() || (r.status == model.TaskStatusStopping && !status.IsFinished()) {
		return false
	}
	if notify != nil {
		defer notify()
	}
	r.status = status
	switch {
	case status == model.TaskStatusStarting:
		r.startedAt = time.Now()
	case status.IsFinished():
		r.finishedAt = time.Now()
	}
	return true
}

func (r *Run) setMessage(msg string) {
	r.mu.Lock()
	r.lastMessage = msg
	r.mu.Unlock()
}

func (r *Run) finish(status model.TaskStatus, result batch.Result) {
	r.mu.Lock()
	r.result = result
	r.mu.Unlock()
	r.setStatus(status)
	r.cancel()
	close(r.done)
}
