// Package workpool implements the lazily-spawning bounded worker pool
// that schedules load tasks: pre-spawned workers, a
// condition-variable-guarded FIFO queue, arrival-time sampling, and
// task categorization for observability.
package workpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taigrr/wfload/pkg/loaderr"
	"github.com/taigrr/wfload/pkg/logsink"
)

// Task is the caller-supplied unit of work. It returns whatever the
// caller's payload produces, or an error.
type Task func() (any, error)

// Handle is a future over a Task's eventual result.
type Handle struct {
	done   chan struct{}
	result any
	err    error
}

// Wait blocks until the task completes (or, for an inline/failed task,
// returns immediately) and returns its result.
func (h *Handle) Wait() (any, error) {
	<-h.done
	return h.result, h.err
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) fulfill(result any, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

type queuedTask struct {
	task    Task
	handle  *Handle
	arrival time.Time
	taskNum int64
}

// Pool is a bounded worker pool with lazy thread spawn. The zero value
// is not usable; construct with New.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*queuedTask
	shutdown bool
	closed   bool
	wg       sync.WaitGroup

	maxThreads int
	preSpawn   int
	workers    int
	idle       int

	taskCounter atomic.Int64

	sink logsink.Sink
	// inline is true when the pool degrades to synchronous, caller-thread
	// execution (maxThreads == 0 or no detected hardware concurrency).
	inline bool
}

// New constructs a pool configured for at most maxThreads concurrent
// workers, clamped to the runtime's detected hardware concurrency. A
// maxThreads of 0 (or a runtime reporting zero hardware concurrency)
// degrades the pool to inline execution: Enqueue runs the task on the
// caller and returns an already-fulfilled handle. sink receives
// observability messages; pass logsink.Discard to suppress them.
func New(maxThreads int, sink logsink.Sink) *Pool {
	if sink == nil {
		sink = logsink.Discard
	}

	hw := runtime.NumCPU()
	if maxThreads == 0 || hw == 0 {
		p := &Pool{inline: true, sink: sink}
		return p
	}
	if maxThreads > hw {
		maxThreads = hw
	}

	preSpawn := maxThreads / 2
	if preSpawn < 1 {
		preSpawn = 1
	}
	if preSpawn > maxThreads {
		preSpawn = maxThreads
	}

	p := &Pool{
		maxThreads: maxThreads,
		preSpawn:   preSpawn,
		sink:       sink,
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < preSpawn; i++ {
		p.spawnWorkerLocked()
	}

	return p
}

// Enqueue schedules task and returns a handle to its eventual result.
// After Shutdown, Enqueue returns an already-failed handle carrying
// loaderr.PoolClosed instead of scheduling anything.
func (p *Pool) Enqueue(task Task) *Handle {
	n := p.taskCounter.Add(1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		h := newHandle()
		h.fulfill(nil, &loaderr.PoolClosed{})
		p.sink.Log(logsink.Warning, "enqueue after shutdown rejected")
		return h
	}

	if p.inline {
		p.mu.Unlock()
		h := newHandle()
		result, err := p.runPayload(task)
		h.fulfill(result, err)
		return h
	}

	h := newHandle()
	qt := &queuedTask{task: task, handle: h, arrival: time.Now(), taskNum: n}
	p.queue = append(p.queue, qt)

	if p.idle == 0 && p.workers < p.maxThreads {
		p.spawnWorkerLocked()
	}
	p.cond.Signal()
	p.mu.Unlock()

	return h
}

func (p *Pool) spawnWorkerLocked() {
	p.workers++
	p.wg.Add(1)
	go p.workerLoop()
}

func (p *Pool) workerLoop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		p.idle++
		for !p.shutdown && len(p.queue) == 0 {
			p.cond.Wait()
		}
		p.idle--

		if len(p.queue) == 0 {
			p.workers--
			p.mu.Unlock()
			return
		}

		qt := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		waited := time.Since(qt.arrival)
		p.sink.Log(logsink.Debug, categorize(qt.taskNum, p.preSpawn, p.maxThreads, waited))

		result, err := p.runPayload(qt.task)
		qt.handle.fulfill(result, err)
	}
}

// runPayload recovers a panicking task so one bad payload can't take
// down a worker; the failure surfaces through the task's own handle.
func (p *Pool) runPayload(task Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	return task()
}

type panicError struct{ v any }

func (e panicError) Error() string {
	return "workpool: task panicked"
}

// Shutdown stops accepting new tasks, wakes every idle worker so it can
// exit once the queue drains, and blocks until all workers have exited.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.shutdown = true
	p.closed = true
	if p.inline {
		p.mu.Unlock()
		return
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

func categorize(n int64, preSpawn, maxThreads int, waited time.Duration) string {
	switch {
	case int(n) <= preSpawn:
		return "assigned to already-running thread"
	case int(n) <= maxThreads:
		return "waited " + waited.String() + " before starting on new thread"
	default:
		return "waited " + waited.String() + " in queue before starting on thread"
	}
}
