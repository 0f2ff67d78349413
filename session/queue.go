package session

import "sync"

// band is a priority class on the processing queue. Lower bands are
// drained first: local actions outrank introspection, introspection
// outranks remote requests, and the wait barrier runs behind everything.
type band int

const (
	bandLocal band = iota
	bandInspection
	bandRemote
	bandWait
	bandCount
)

// processingQueue serializes all work on one session: concurrency degree
// one, tasks totally ordered by (band, arrival), each task running to
// completion before the next one starts.
type processingQueue struct {
	mu     sync.Mutex
	bands  [bandCount][]func()
	closed bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newProcessingQueue() *processingQueue {
	q := &processingQueue{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// push enqueues fn on the given band. It reports false once the queue is
// closed; fn will never run in that case.
func (q *processingQueue) push(b band, fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.bands[b] = append(q.bands[b], fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

func (q *processingQueue) pop() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for b := range q.bands {
		if len(q.bands[b]) > 0 {
			fn := q.bands[b][0]
			q.bands[b] = q.bands[b][1:]
			return fn
		}
	}
	return nil
}

func (q *processingQueue) run() {
	defer close(q.done)
	for {
		if fn := q.pop(); fn != nil {
			fn()
			continue
		}
		select {
		case <-q.wake:
		case <-q.quit:
			// already accepted work still runs; push rejects from now on
			for fn := q.pop(); fn != nil; fn = q.pop() {
				fn()
			}
			return
		}
	}
}

// close rejects further pushes, drains accepted work and waits for the
// runner to stop. Idempotent.
func (q *processingQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.quit)
	<-q.done
}
