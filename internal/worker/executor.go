package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/model"
)

// Executor constants
const (
	RunIDPrefix        = "run-"
	DefaultQueueSize   = 16
	DefaultEventBuffer = 64
)

// ErrExecutorClosed is returned by Submit after Close
var ErrExecutorClosed = errors.New("executor is closed")

// Handler executes one command, reporting human readable progress
type Handler interface {
	Handle(ctx context.Context, cmd Command, progress func(string)) batch.Result
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, cmd Command, progress func(string)) batch.Result

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, cmd Command, progress func(string)) batch.Result {
	return f(ctx, cmd, progress)
}

// EventType classifies executor events
type EventType string

const (
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
	EventResult   EventType = "result"
)

// Event is emitted on the executor's events channel
type Event struct {
	Seq     int64
	RunID   string
	Type    EventType
	Status  model.TaskStatus
	Message string
	Result  *batch.Result
	At      time.Time
}

// Executor receives commands over a channel and runs each in its own goroutine.
// When the consumer lags, the oldest undelivered progress events are dropped;
// status and result events are always delivered.
type Executor struct {
	handler Handler
	log     logger.Logger

	commands chan *Run
	events   chan Event
	queue    *eventQueue

	root       context.Context
	cancelRoot context.CancelFunc

	runs      map[string]*Run
	runsMutex sync.RWMutex
	closed    bool
	seq       int64
	seqMutex  sync.Mutex

	wg       sync.WaitGroup
	loopDone chan struct{}
}

// NewExecutor creates and starts an executor
func NewExecutor(handler Handler, log logger.Logger) *Executor {
	root, cancel := context.WithCancel(context.Background())
	e := &Executor{
		handler:    handler,
		log:        logger.OrNop(log),
		commands:   make(chan *Run, DefaultQueueSize),
		events:     make(chan Event),
		queue:      newEventQueue(DefaultEventBuffer),
		root:       root,
		cancelRoot: cancel,
		runs:       make(map[string]*Run),
		loopDone:   make(chan struct{}),
	}
	go e.loop()
	go e.queue.deliver(e.events)
	return e
}

// Events returns the channel of run events. It is closed once Close has
// returned and every queued event was received.
func (e *Executor) Events() <-chan Event {
	return e.events
}

// Submit queues cmd and returns its run handle
func (e *Executor) Submit(cmd Command) (*Run, error) {
	if cmd == nil {
		return nil, fmt.Errorf("command is nil")
	}

	e.runsMutex.Lock()
	defer e.runsMutex.Unlock()
	if e.closed {
		return nil, ErrExecutorClosed
	}

	run := newRun(e.root, generateRunID(), cmd)
	run.onStopping = func() {
		e.emit(Event{RunID: run.ID, Type: EventStatus, Status: model.TaskStatusStopping}, true)
	}
	e.runs[run.ID] = run
	e.wg.Add(1)
	e.commands <- run

	e.log.Info(context.Background(), "Queued %s: %s", run.ID, cmd.Describe())
	return run, nil
}

// GetRun returns a run by ID
func (e *Executor) GetRun(id string) (*Run, bool) {
	e.runsMutex.RLock()
	defer e.runsMutex.RUnlock()
	run, ok := e.runs[id]
	return run, ok
}

// Runs returns all runs ordered by ID, which is time ordered
func (e *Executor) Runs() []*Run {
	e.runsMutex.RLock()
	defer e.runsMutex.RUnlock()
	runs := make([]*Run, 0, len(e.runs))
	for _, run := range e.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs
}

// Cancel cancels the run with the given ID
func (e *Executor) Cancel(id string) error {
	run, ok := e.GetRun(id)
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}
	if !run.Cancel() {
		return fmt.Errorf("run is not active: %s", run.Status())
	}
	return nil
}

// Close cancels all runs, waits for them and closes the events channel
func (e *Executor) Close() {
	e.runsMutex.Lock()
	if e.closed {
		e.runsMutex.Unlock()
		return
	}
	e.closed = true
	close(e.commands)
	e.runsMutex.Unlock()

	e.cancelRoot()
	<-e.loopDone
	e.wg.Wait()
	if n := e.queue.Dropped(); n > 0 {
		e.log.Debug(context.Background(), "Dropped %d stale progress event(s)", n)
	}
	e.queue.close()
}

func (e *Executor) loop() {
	defer close(e.loopDone)
	for run := range e.commands {
		go e.execute(run)
	}
}

func (e *Executor) execute(run *Run) {
	defer e.wg.Done()
	ctx := run.ctx

	if ctx.Err() != nil {
		e.complete(run, model.TaskStatusStopped, batch.Result{State: model.BatchStateFailed, Err: ctx.Err()})
		return
	}

	e.transition(run, model.TaskStatusStarting)
	e.transition(run, model.TaskStatusRunning)

	result := e.handler.Handle(ctx, run.Command, func(msg string) {
		run.setMessage(msg)
		e.emit(Event{RunID: run.ID, Type: EventProgress, Status: run.Status(), Message: msg}, false)
	})

	status := result.State.Outcome()
	if ctx.Err() != nil {
		status = model.TaskStatusStopped
	}
	e.complete(run, status, result)
}

func (e *Executor) transition(run *Run, status model.TaskStatus) {
	run.updateStatus(status, func() {
		e.emit(Event{RunID: run.ID, Type: EventStatus, Status: status}, true)
	})
}

func (e *Executor) complete(run *Run, status model.TaskStatus, result batch.Result) {
	run.finish(status, result)
	if result.Err != nil {
		e.log.Warn(context.Background(), "%s finished as %s: %v", run.ID, status, result.Err)
	} else {
		e.log.Info(context.Background(), "%s finished as %s in %s", run.ID, status, run.Elapsed().Round(time.Second))
	}
	e.emit(Event{RunID: run.ID, Type: EventStatus, Status: status}, true)
	e.emit(Event{RunID: run.ID, Type: EventResult, Status: status, Result: &result}, true)
}

func (e *Executor) emit(ev Event, important bool) {
	e.seqMutex.Lock()
	defer e.seqMutex.Unlock()
	e.seq++
	ev.Seq = e.seq
	ev.At = time.Now()

	if !e.queue.push(ev) && important {
		e.log.Warn(context.Background(), "Event %s for %s after close", ev.Type, ev.RunID)
	}
}

// generateRunID generates a unique, time ordered run ID
func generateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RunIDPrefix+"%d", time.Now().UnixNano())
	}
	return RunIDPrefix + id.String()
}
