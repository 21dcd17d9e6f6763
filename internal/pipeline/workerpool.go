package pipeline

// Pool is a small fixed-size goroutine pool shared across every connection's
// Pipeline for TTS RPCs, so a slow provider call on one connection cannot
// starve the worker of another. Translation calls do not go through the
// pool: they run synchronously on the connection's own worker goroutine.
// It is intentionally a plain jobs channel rather than a per-call goroutine:
// the worker count bounds how many provider calls run at once, and the
// queue depth bounds how many more may wait.
type Pool struct {
	jobs chan func()
}

// NewPool starts size worker goroutines draining a shared job queue.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{jobs: make(chan func(), size*8)}
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	for job := range p.jobs {
		job()
	}
}

// Submit enqueues job for execution on the pool. Blocks if the queue is
// full, which back-pressures the submitting connection's worker — every
// caller in this package submits from its own per-connection goroutine, so
// a full pool slows one connection down rather than dropping work.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}
