package server

import (
	"time"

	"github.com/aryszka/jobqueue"

	"github.com/coreway/httpcore/core"
)

// BlockingPool admits handlers declared Blocking through a bounded
// jobqueue stack, capping how many of them run at once. An admitted
// handler runs on the goroutine that called Submit.
type BlockingPool struct {
	queue *jobqueue.Stack
}

// NewBlockingPool builds a pool with the given concurrency and queue
// depth; submissions beyond the queue depth fail fast with
// core.Internal rather than blocking indefinitely.
func NewBlockingPool(maxConcurrency, maxQueueSize int, timeout time.Duration) *BlockingPool {
	return &BlockingPool{
		queue: jobqueue.With(jobqueue.Options{
			MaxConcurrency: maxConcurrency,
			MaxStackSize:   maxQueueSize,
			Timeout:        timeout,
		}),
	}
}

// Submit waits for admission, then runs fn on the calling goroutine
// and returns its error, translating queue-full and timeout conditions
// into core.Internal so the dispatcher's usual error rendering applies.
func (p *BlockingPool) Submit(fn func() error) error {
	done, err := p.queue.Wait()
	if err != nil {
		return core.Wrap(core.Internal, "blocking pool rejected request", err)
	}
	defer done()

	return fn()
}

// Close releases the pool's resources. Call once at server shutdown.
func (p *BlockingPool) Close() { p.queue.Close() }
