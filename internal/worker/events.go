package worker

import "sync"

// eventQueue sits between emitters and the Events channel. It keeps at most
// limit undelivered progress events, evicting the oldest one first. Status
// and result events are never evicted.
type eventQueue struct {
	mu       sync.Mutex
	pending  []Event
	progress int
	limit    int
	dropped  int
	closed   bool
	notify   chan struct{}
}

func newEventQueue(limit int) *eventQueue {
	if limit < 1 {
		limit = 1
	}
	return &eventQueue{limit: limit, notify: make(chan struct{}, 1)}
}

// push appends ev. It returns false once the queue is closed.
func (q *eventQueue) push(ev Event) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, ev)
	if ev.Type == EventProgress {
		q.progress++
		if q.progress > q.limit {
			q.dropOldestProgress()
		}
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *eventQueue) dropOldestProgress() {
	for i, ev := range q.pending {
		if ev.Type != EventProgress {
			continue
		}
		q.pending = append(q.pending[:i], q.pending[i+1:]...)
		q.progress--
		q.dropped++
		return
	}
}

// pop removes the head event; ok is false when nothing is pending
func (q *eventQueue) pop() (ev Event, ok, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Event{}, false, q.closed
	}
	ev = q.pending[0]
	q.pending[0] = Event{}
	q.pending = q.pending[1:]
	if ev.Type == EventProgress {
		q.progress--
	}
	return ev, true, q.closed
}

// close stops accepting events; queued ones are still delivered
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// deliver forwards queued events to out in order and closes out once the
// queue is closed and drained
func (q *eventQueue) deliver(out chan<- Event) {
	defer close(out)
	for {
		ev, ok, closed := q.pop()
		if !ok {
			if closed {
				return
			}
			<-q.notify
			continue
		}
		out <- ev
	}
}

// Dropped returns how many progress events were evicted
func (q *eventQueue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
