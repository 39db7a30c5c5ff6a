package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-magic/internal/batch"
	"github.com/ytget/media-magic/internal/logger"
	"github.com/ytget/media-magic/internal/model"
)

type testCommand string

func (c testCommand) Describe() string { return string(c) }

func collect(e *Executor) []Event {
	var events []Event
	for ev := range e.Events() {
		events = append(events, ev)
	}
	return events
}

func eventsFor(events []Event, runID string, typ EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.RunID == runID && ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestExecutor_CompletedRun(t *testing.T) {
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		progress("Uploading files...")
		progress("Transcription complete!")
		return batch.Result{JobID: "j-1", State: model.BatchStateCompleted, Transcripts: []string{"a.txt"}}
	})
	e := NewExecutor(handler, logger.Nop())

	run, err := e.Submit(testCommand("audio a.mp3"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(run.ID, RunIDPrefix))

	result := run.Wait()
	assert.Equal(t, model.BatchStateCompleted, result.State)
	assert.Equal(t, model.TaskStatusCompleted, run.Status())
	assert.Equal(t, "Transcription complete!", run.LastMessage())

	e.Close()
	events := collect(e)

	var statuses []model.TaskStatus
	for _, ev := range eventsFor(events, run.ID, EventStatus) {
		statuses = append(statuses, ev.Status)
	}
	assert.Equal(t, []model.TaskStatus{model.TaskStatusStarting, model.TaskStatusRunning, model.TaskStatusCompleted}, statuses)

	progress := eventsFor(events, run.ID, EventProgress)
	require.Len(t, progress, 2)
	assert.Equal(t, "Uploading files...", progress[0].Message)

	results := eventsFor(events, run.ID, EventResult)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"a.txt"}, results[0].Result.Transcripts)

	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Seq, events[i-1].Seq)
	}
}

func TestExecutor_FailedRunIsError(t *testing.T) {
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		return batch.Result{State: model.BatchStateFailed, Err: errors.New("job initialization failed")}
	})
	e := NewExecutor(handler, nil)
	defer e.Close()

	run, err := e.Submit(testCommand("video"))
	require.NoError(t, err)
	result := run.Wait()

	assert.Equal(t, model.TaskStatusError, run.Status())
	assert.EqualError(t, result.Err, "job initialization failed")
}

func TestExecutor_Cancel(t *testing.T) {
	started := make(chan struct{})
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		close(started)
		<-ctx.Done()
		return batch.Result{State: model.BatchStateFailed, Err: ctx.Err()}
	})
	e := NewExecutor(handler, nil)
	defer e.Close()

	run, err := e.Submit(testCommand("long"))
	require.NoError(t, err)
	<-started

	require.NoError(t, e.Cancel(run.ID))

	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish after cancel")
	}
	assert.Equal(t, model.TaskStatusStopped, run.Status())
	assert.ErrorIs(t, run.Result().Err, context.Canceled)

	assert.Error(t, e.Cancel(run.ID), "cancelling a finished run should fail")
	assert.Error(t, e.Cancel("run-missing"))
}

func TestExecutor_RunsConcurrently(t *testing.T) {
	release := make(chan struct{})
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		<-release
		return batch.Result{State: model.BatchStateCompleted}
	})
	e := NewExecutor(handler, nil)
	defer e.Close()

	first, err := e.Submit(testCommand("one"))
	require.NoError(t, err)
	second, err := e.Submit(testCommand("two"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return first.Status() == model.TaskStatusRunning && second.Status() == model.TaskStatusRunning
	}, 5*time.Second, 5*time.Millisecond)

	close(release)
	first.Wait()
	second.Wait()

	runs := e.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	got, ok := e.GetRun(second.ID)
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestExecutor_CloseCancelsActiveRuns(t *testing.T) {
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		<-ctx.Done()
		return batch.Result{State: model.BatchStateFailed, Err: ctx.Err()}
	})
	e := NewExecutor(handler, nil)

	run, err := e.Submit(testCommand("blocking"))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for range e.Events() {
		}
		close(done)
	}()

	e.Close()
	<-done
	assert.Equal(t, model.TaskStatusStopped, run.Status())

	_, err = e.Submit(testCommand("late"))
	assert.ErrorIs(t, err, ErrExecutorClosed)
	e.Close()
}

func TestRun_CancelBeforeStart(t *testing.T) {
	run := newRun(context.Background(), "run-1", testCommand("x"))
	assert.True(t, run.Cancel())
	assert.Equal(t, model.TaskStatusPending, run.Status())
	assert.Error(t, run.ctx.Err())

	run.finish(model.TaskStatusStopped, batch.Result{State: model.BatchStateFailed})
	assert.False(t, run.Cancel())
	assert.Equal(t, model.TaskStatusStopped, run.Status())
}

func TestSubmitNilCommand(t *testing.T) {
	e := NewExecutor(HandlerFunc(func(context.Context, Command, func(string)) batch.Result { return batch.Result{} }), nil)
	defer e.Close()

	_, err := e.Submit(nil)
	assert.Error(t, err)
}

func TestExecutor_LaggingConsumerKeepsNewestProgress(t *testing.T) {
	const total = DefaultEventBuffer * 3
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		for i := 0; i < total; i++ {
			progress(fmt.Sprintf("Job status: %d", i))
		}
		progress("Transcription complete!")
		return batch.Result{State: model.BatchStateCompleted}
	})
	e := NewExecutor(handler, nil)

	run, err := e.Submit(testCommand("flood"))
	require.NoError(t, err)
	run.Wait()
	e.Close()
	events := collect(e)

	progress := eventsFor(events, run.ID, EventProgress)
	require.NotEmpty(t, progress)
	assert.LessOrEqual(t, len(progress), DefaultEventBuffer)
	assert.Equal(t, "Transcription complete!", progress[len(progress)-1].Message)
	assert.Equal(t, fmt.Sprintf("Job status: %d", total-1), progress[len(progress)-2].Message)

	var statuses []model.TaskStatus
	for _, ev := range eventsFor(events, run.ID, EventStatus) {
		statuses = append(statuses, ev.Status)
	}
	assert.Equal(t, []model.TaskStatus{model.TaskStatusStarting, model.TaskStatusRunning, model.TaskStatusCompleted}, statuses)
	require.Len(t, eventsFor(events, run.ID, EventResult), 1)
}

func TestExecutor_CancelEmitsStopping(t *testing.T) {
	started := make(chan struct{})
	handler := HandlerFunc(func(ctx context.Context, cmd Command, progress func(string)) batch.Result {
		close(started)
		<-ctx.Done()
		return batch.Result{State: model.BatchStateFailed, Err: ctx.Err()}
	})
	e := NewExecutor(handler, nil)

	run, err := e.Submit(testCommand("long"))
	require.NoError(t, err)
	<-started
	require.NoError(t, e.Cancel(run.ID))
	run.Wait()
	e.Close()

	var statuses []model.TaskStatus
	for _, ev := range eventsFor(collect(e), run.ID, EventStatus) {
		statuses = append(statuses, ev.Status)
	}
	assert.Equal(t, []model.TaskStatus{model.TaskStatusStarting, model.TaskStatusRunning, model.TaskStatusStopping, model.TaskStatusStopped}, statuses)
}

func TestEventQueue_EvictsOldestProgressOnly(t *testing.T) {
	q := newEventQueue(2)
	q.push(Event{Type: EventStatus, Status: model.TaskStatusRunning})
	q.push(Event{Type: EventProgress, Message: "a"})
	q.push(Event{Type: EventProgress, Message: "b"})
	q.push(Event{Type: EventProgress, Message: "c"})
	q.push(Event{Type: EventResult})
	q.close()
	assert.False(t, q.push(Event{Type: EventProgress, Message: "late"}))

	out := make(chan Event, 8)
	q.deliver(out)

	var got []string
	for ev := range out {
		got = append(got, string(ev.Type)+":"+ev.Message)
	}
	assert.Equal(t, []string{"status:", "progress:b", "progress:c", "result:"}, got)
	assert.Equal(t, 1, q.Dropped())
}
