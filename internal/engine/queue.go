package engine

import (
	"context"
	"sync"
	"time"
)

// Queue debounces trigger signals per document. A path is released once no
// further signal for it has arrived for the debounce delay; repeated
// signals before that coalesce into one release.
type Queue struct {
	delay time.Duration

	mu      sync.Mutex
	waiting map[string]*pendingSignal
	ready   []string
	queued  map[string]bool
	wake    chan struct{}
	closed  bool
}

type pendingSignal struct {
	timer *time.Timer
	gen   int
}

// NewQueue returns a Queue releasing paths after delay.
func NewQueue(delay time.Duration) *Queue {
	return &Queue{
		delay:   delay,
		waiting: make(map[string]*pendingSignal),
		queued:  make(map[string]bool),
		wake:    make(chan struct{}, 1),
	}
}

// Push records a signal for p and restarts its debounce delay.
func (q *Queue) Push(p string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	s := q.waiting[p]
	if s == nil {
		s = &pendingSignal{}
		q.waiting[p] = s
	} else {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(q.delay, func() { q.release(p, gen) })
}

func (q *Queue) release(p string, gen int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.waiting[p]
	if q.closed || s == nil || s.gen != gen {
		return
	}
	delete(q.waiting, p)
	if q.queued[p] {
		return
	}
	q.queued[p] = true
	q.ready = append(q.ready, p)
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Next blocks until a path is released and returns it. It returns false
// once ctx is done or the queue is closed and drained.
func (q *Queue) Next(ctx context.Context) (string, bool) {
	for {
		q.mu.Lock()
		if len(q.ready) > 0 {
			p := q.ready[0]
			q.ready = q.ready[1:]
			delete(q.queued, p)
			q.mu.Unlock()
			return p, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return "", false
		}

		select {
		case <-ctx.Done():
			return "", false
		case <-q.wake:
		}
	}
}

// Len returns the number of paths waiting or ready.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting) + len(q.ready)
}

// Close drops waiting signals and wakes blocked readers.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for p, s := range q.waiting {
		s.timer.Stop()
		delete(q.waiting, p)
	}
	close(q.wake)
}
