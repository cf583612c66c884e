package tags

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingServer hands every submission to the test and blocks it until the
// test releases it with a result.
type blockingServer struct {
	calls    chan string
	release  chan error
	inflight atomic.Int32
	maxSeen  atomic.Int32
}

func newBlockingServer() *blockingServer {
	return &blockingServer{
		calls:   make(chan string, 16),
		release: make(chan error),
	}
}

func (s *blockingServer) submit(_ context.Context, spec string) error {
	n := s.inflight.Add(1)
	for {
		old := s.maxSeen.Load()
		if n <= old || s.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	defer s.inflight.Add(-1)
	s.calls <- spec
	return <-s.release
}

func (s *blockingServer) nextCall(t *testing.T) string {
	t.Helper()
	select {
	case spec := <-s.calls:
		return spec
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for submission")
		return ""
	}
}

func (s *blockingServer) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case spec := <-s.calls:
		t.Fatalf("unexpected submission %q", spec)
	case <-time.After(50 * time.Millisecond):
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []QueueEvent
}

func (l *eventLog) record(ev QueueEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []QueueEventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]QueueEventKind, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Kind)
	}
	return out
}

func drain(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Drain(ctx))
}

func TestQueueIdleEnqueueSendsFullOpList(t *testing.T) {
	srv := newBlockingServer()
	q := NewQueue(srv.submit)
	assert.False(t, q.Busy())

	q.Enqueue([]string{"red", "-blue"})
	assert.True(t, q.Busy())
	assert.Equal(t, "red,-blue", srv.nextCall(t))

	srv.release <- nil
	drain(t, q)
	assert.False(t, q.Busy())
	srv.assertNoCall(t)
}

func TestQueueEmptyEnqueueIsIgnored(t *testing.T) {
	srv := newBlockingServer()
	q := NewQueue(srv.submit)
	q.Enqueue(nil)
	assert.False(t, q.Busy())
	srv.assertNoCall(t)
}

func TestQueueAnnihilatesContradictingPendingOps(t *testing.T) {
	srv := newBlockingServer()
	q := NewQueue(srv.submit)

	q.Enqueue([]string{"first"})
	require.Equal(t, "first", srv.nextCall(t))

	q.Enqueue([]string{"foo"})
	q.Enqueue([]string{"-foo"})
	assert.Empty(t, q.Pending())

	srv.release <- nil
	drain(t, q)
	srv.assertNoCall(t)
}

func TestQueueSingleFlightMergesIntoOneFollowUp(t *testing.T) {
	srv := newBlockingServer()
	q := NewQueue(srv.submit)

	q.Enqueue([]string{"a"})
	require.Equal(t, "a", srv.nextCall(t))

	q.Enqueue([]string{"b"})
	q.Enqueue([]string{"c", "d"})
	q.Enqueue([]string{"-c"})
	q.Enqueue([]string{"-a"})
	assert.Equal(t, []string{"b", "d", "-a"}, q.Pending())

	srv.release <- nil
	assert.Equal(t, "b,d,-a", srv.nextCall(t))
	assert.True(t, q.Busy())

	srv.release <- nil
	drain(t, q)
	srv.assertNoCall(t)
	assert.Equal(t, int32(1), srv.maxSeen.Load())
}

func TestQueueFailedSubmissionStillFlushesPending(t *testing.T) {
	// Failures are not distinguished from success: nothing is retried or
	// rolled back, the follow-up still goes out.
	srv := newBlockingServer()
	events := &eventLog{}
	q := NewQueue(srv.submit, WithNotify(events.record))

	q.Enqueue([]string{"a"})
	require.Equal(t, "a", srv.nextCall(t))
	q.Enqueue([]string{"b"})

	srv.release <- errors.New("HTTP 500")
	assert.Equal(t, "b", srv.nextCall(t))
	srv.release <- nil
	drain(t, q)

	assert.Equal(t, []QueueEventKind{QueueBusy, QueueFlushed, QueueFlushed, QueueIdle}, events.kinds())
	events.mu.Lock()
	defer events.mu.Unlock()
	assert.EqualError(t, events.events[1].Err, "HTTP 500")
	assert.Equal(t, "a", events.events[1].Spec)
	assert.NoError(t, events.events[2].Err)
}

func TestQueueBecomesUsableAgainAfterIdle(t *testing.T) {
	srv := newBlockingServer()
	q := NewQueue(srv.submit)

	q.Enqueue([]string{"a"})
	srv.nextCall(t)
	srv.release <- nil
	drain(t, q)

	q.Enqueue([]string{"b"})
	assert.Equal(t, "b", srv.nextCall(t))
	srv.release <- nil
	drain(t, q)
}

func TestQueueDrainHonorsContext(t *testing.T) {
	srv := newBlockingServer()
	q := NewQueue(srv.submit)
	q.Enqueue([]string{"stalled"})
	srv.nextCall(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Drain(ctx), context.DeadlineExceeded)

	// A stalled request keeps the queue busy; merging still works.
	q.Enqueue([]string{"later"})
	assert.Equal(t, []string{"later"}, q.Pending())

	srv.release <- nil
	assert.Equal(t, "later", srv.nextCall(t))
	srv.release <- nil
	drain(t, q)
}

func TestQueuePassesBaseContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "widget-1")
	got := make(chan any, 1)
	q := NewQueue(func(ctx context.Context, _ string) error {
		got <- ctx.Value(ctxKey{})
		return nil
	}, WithBaseContext(ctx))
	q.Enqueue([]string{"x"})
	drain(t, q)
	assert.Equal(t, "widget-1", <-got)
}

func TestMergeOp(t *testing.T) {
	assert.Equal(t, []string{"a"}, mergeOp(nil, "a"))
	assert.Empty(t, mergeOp([]string{"a"}, "-a"))
	assert.Equal(t, []string{"b"}, mergeOp([]string{"-a", "b"}, "a"))
	assert.Equal(t, []string{"a", "a"}, mergeOp([]string{"a"}, "a"))
}

func TestQueueEventKindString(t *testing.T) {
	assert.Equal(t, "busy", QueueBusy.String())
	assert.Equal(t, "flushed", QueueFlushed.String())
	assert.Equal(t, "idle", QueueIdle.String())
}
