package dispatch

import (
	"errors"
	"sync"
)

var (
	// ErrBusy is returned when the queue is at capacity; the submitter
	// must fail the connection rather than wait.
	ErrBusy = errors.New("job queue full")
	// ErrClosed is returned when submitting to a stopped dispatcher.
	ErrClosed = errors.New("job queue closed")
)

// queue is a bounded FIFO of jobs. A mutex plus a "non-empty"
// condition variable carries the producer/consumer handoff: push
// signals one waiter, pop blocks until a job or close arrives.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []Job
	cap    int
	closed bool
}

func newQueue(capacity int) *queue {
	q := &queue{cap: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues a job without ever blocking the caller.
func (q *queue) push(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if len(q.jobs) >= q.cap {
		return ErrBusy
	}
	q.jobs = append(q.jobs, job)
	q.cond.Signal()
	return nil
}

// pop blocks until a job is available and dequeues the oldest one.
// The second return is false once the queue is closed and drained.
func (q *queue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true
}

// close marks the queue closed, wakes every waiter, and hands back
// whatever was still pending so the caller can dispose of it.
func (q *queue) close() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	pending := q.jobs
	q.jobs = nil
	q.cond.Broadcast()
	return pending
}

func (q *queue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
