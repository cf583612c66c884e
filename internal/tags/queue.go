package tags

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// SubmitFunc sends one serialized spec to the server. It returning is the
// completion signal; the error is reported but does not change queue flow.
type SubmitFunc func(ctx context.Context, spec string) error

// QueueEventKind identifies a queue state change.
type QueueEventKind int

const (
	QueueBusy QueueEventKind = iota
	QueueFlushed
	QueueIdle
)

func (k QueueEventKind) String() string {
	switch k {
	case QueueBusy:
		return "busy"
	case QueueFlushed:
		return "flushed"
	case QueueIdle:
		return "idle"
	}
	return "unknown"
}

// QueueEvent is reported to the notify hook. Spec and Err are set for
// QueueFlushed only.
type QueueEvent struct {
	Kind QueueEventKind
	Spec string
	Err  error
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the queue logger.
func WithLogger(logger *log.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithNotify sets a hook called on every state change. It runs on whichever
// goroutine caused the change and must not block.
func WithNotify(fn func(QueueEvent)) QueueOption {
	return func(q *Queue) {
		q.notify = fn
	}
}

// WithBaseContext sets the context passed to every submission.
func WithBaseContext(ctx context.Context) QueueOption {
	return func(q *Queue) {
		if ctx != nil {
			q.ctx = ctx
		}
	}
}

// Queue coalesces tag changes so that at most one submission is in flight.
// Changes enqueued while busy are merged into a pending list, where an op
// and its negation cancel out, and sent as one follow-up request.
type Queue struct {
	submit SubmitFunc
	logger *log.Logger
	notify func(QueueEvent)
	ctx    context.Context

	mu      sync.Mutex
	busy    bool
	pending []string
	idle    chan struct{}
}

// NewQueue creates an idle queue.
func NewQueue(submit SubmitFunc, opts ...QueueOption) *Queue {
	idle := make(chan struct{})
	close(idle)
	q := &Queue{
		submit: submit,
		logger: log.New(io.Discard),
		ctx:    context.Background(),
		idle:   idle,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue submits ops, or merges them into the pending list while a request
// is in flight.
func (q *Queue) Enqueue(ops []string) {
	if len(ops) == 0 {
		return
	}
	q.mu.Lock()
	if q.busy {
		for _, op := range ops {
			q.pending = mergeOp(q.pending, op)
		}
		q.logger.Debug("merged into pending", "ops", ops, "pending", len(q.pending))
		q.mu.Unlock()
		return
	}
	q.busy = true
	q.idle = make(chan struct{})
	batch := append([]string{}, ops...)
	q.mu.Unlock()

	q.emit(QueueEvent{Kind: QueueBusy})
	go q.run(batch)
}

// Busy reports whether a request is in flight.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

// Pending returns a copy of the ops waiting for the next request.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string{}, q.pending...)
}

// Drain blocks until the queue is idle or ctx is done.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run(batch []string) {
	for {
		spec := JoinSpec(batch)
		err := q.submit(q.ctx, spec)
		if err != nil {
			// Failed submissions are not retried and local state is kept.
			q.logger.Warn("tag submission failed", "spec", spec, "err", err)
		} else {
			q.logger.Debug("tag submission done", "spec", spec)
		}
		q.emit(QueueEvent{Kind: QueueFlushed, Spec: spec, Err: err})

		q.mu.Lock()
		if len(q.pending) > 0 {
			batch = q.pending
			q.pending = nil
			q.mu.Unlock()
			continue
		}
		q.busy = false
		done := q.idle
		q.mu.Unlock()

		q.emit(QueueEvent{Kind: QueueIdle})
		close(done)
		return
	}
}

func (q *Queue) emit(ev QueueEvent) {
	if q.notify != nil {
		q.notify(ev)
	}
}

// mergeOp appends op unless its negation is already pending, in which case
// both are dropped.
func mergeOp(pending []string, op string) []string {
	negation := Negate(op)
	for i, p := range pending {
		if p == negation {
			return append(pending[:i], pending[i+1:]...)
		}
	}
	return append(pending, op)
}
