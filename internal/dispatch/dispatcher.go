package dispatch

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Job is one accepted connection awaiting handling by a worker.
type Job struct {
	Conn       net.Conn
	ID         string
	AcceptedAt time.Time
}

// Handler processes one job to completion, including any blocking
// connection I/O. It runs on a worker goroutine.
type Handler func(Job)

// Dispatcher owns a fixed set of workers draining a bounded FIFO
// queue of accepted connections. The pool is sized once at startup
// and stays at that size for the process lifetime: a panicking job is
// contained, and a worker that dies anyway is replaced.
type Dispatcher struct {
	queue   *queue
	handler Handler
	log     *zerolog.Logger

	size    int
	started atomic.Bool
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// New constructs a dispatcher with the given pool size and queue
// capacity. Workers do not run until Start is called.
func New(size, queueCapacity int, handler Handler, logger *zerolog.Logger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	if queueCapacity < 1 {
		queueCapacity = 1
	}
	return &Dispatcher{
		queue:   newQueue(queueCapacity),
		handler: handler,
		log:     logger,
		size:    size,
	}
}

// Start launches the worker pool. It is a no-op on repeated calls.
func (d *Dispatcher) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < d.size; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.log.Info().Int("workers", d.size).Int("queue_capacity", d.queue.cap).Msg("dispatcher started")
}

// Submit enqueues a job for the next idle worker. It never blocks:
// at capacity it fails fast with ErrBusy so the acceptor can reject
// the connection instead of growing memory without bound.
func (d *Dispatcher) Submit(job Job) error {
	return d.queue.push(job)
}

// Stop closes the queue, lets workers drain, and disposes of any
// jobs that never reached a worker.
func (d *Dispatcher) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}
	pending := d.queue.close()
	for _, job := range pending {
		if job.Conn != nil {
			_ = job.Conn.Close()
		}
	}
	d.wg.Wait()
	d.log.Info().Int("dropped", len(pending)).Msg("dispatcher stopped")
}

// Workers returns the configured pool size, which is also the live
// worker count while the dispatcher runs.
func (d *Dispatcher) Workers() int {
	return d.size
}

// QueueDepth returns the number of jobs waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return d.queue.depth()
}

// QueueCapacity returns the maximum number of queued jobs.
func (d *Dispatcher) QueueCapacity() int {
	return d.queue.cap
}

func (d *Dispatcher) worker(id int) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Int("worker", id).Any("panic", r).Msg("worker died, spawning replacement")
			if !d.stopped.Load() {
				go d.worker(id)
				return
			}
		}
		d.wg.Done()
	}()

	for {
		job, ok := d.queue.pop()
		if !ok {
			return
		}
		d.run(id, job)
	}
}

// run executes one job, containing panics so a misbehaving handler
// costs at most its own connection, never a worker.
func (d *Dispatcher) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Int("worker", id).
				Str("conn_id", job.ID).
				Any("panic", r).
				Msg("job handler panicked")
		}
		if job.Conn != nil {
			_ = job.Conn.Close()
		}
	}()

	d.handler(job)
}
