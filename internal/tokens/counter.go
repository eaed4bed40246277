// Package tokens implements token accounting for the file browser: a
// background counter that tokenizes files with a bounded worker pool, and an
// accountant that keeps per-path totals consistent on the control loop.
package tokens

import (
	"os"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkoukk/tiktoken-go"

	"github.com/repopick/repopick/internal/logger"
)

// encodingName selects the tokenizer. o200k_base covers current OpenAI
// models and is close enough for sizing any LLM context.
const encodingName = "o200k_base"

// requestBuffer bounds the queue between the control loop and the
// dispatcher. A full buffer makes Enqueue fail instead of blocking input.
const requestBuffer = 4096

// Result is one finished computation, reported back to the control loop.
type Result struct {
	Path  string
	Count int
}

// Counter computes token counts on background workers. A single encoder
// instance and a mutex-guarded cache are shared by all workers; the ants
// pool is the admission control that keeps simultaneous reads bounded no
// matter how many paths are queued.
type Counter struct {
	enc  *tiktoken.Tiktoken
	pool *ants.Pool

	mu    sync.Mutex
	cache map[string]int

	requests chan string
	results  chan Result
}

// NewCounter builds a counter whose pool admits roughly twice the available
// parallelism, so queueing thousands of files never spawns thousands of
// simultaneous reads.
func NewCounter() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(2 * runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}
	return &Counter{
		enc:      enc,
		pool:     pool,
		cache:    make(map[string]int),
		requests: make(chan string, requestBuffer),
		results:  make(chan Result, 256),
	}, nil
}

// Start launches the dispatcher. Submission blocks while the pool is
// saturated, so excess requests wait in the channel rather than running.
func (c *Counter) Start() {
	go func() {
		for path := range c.requests {
			p := path
			if err := c.pool.Submit(func() {
				c.results <- Result{Path: p, Count: c.countFile(p)}
			}); err != nil {
				logger.Get().Error().Err(err).Str("path", p).Msg("token pool rejected task")
				c.results <- Result{Path: p, Count: 0}
			}
		}
		c.pool.Release()
	}()
}

// Enqueue requests a count for path without blocking. It reports false when
// the queue is full; the caller treats that file as overflow for this
// generation.
func (c *Counter) Enqueue(path string) bool {
	select {
	case c.requests <- path:
		return true
	default:
		return false
	}
}

// Results is the channel the control loop drains each iteration.
func (c *Counter) Results() <-chan Result {
	return c.results
}

// Close stops accepting requests and winds the pool down once queued work
// has been dispatched.
func (c *Counter) Close() {
	close(c.requests)
}

// countFile returns the token count for path. The cache is checked again
// after the worker slot is acquired: two near-simultaneous requests for the
// same path must not tokenize it twice. Unreadable files resolve to 0 so a
// pending entry always completes.
func (c *Counter) countFile(path string) int {
	c.mu.Lock()
	if count, ok := c.cache[path]; ok {
		c.mu.Unlock()
		return count
	}
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Get().Debug().Str("path", path).Err(err).Msg("unreadable file counts as zero tokens")
		c.store(path, 0)
		return 0
	}

	count := len(c.enc.Encode(string(data), nil, nil))
	return c.store(path, count)
}

// store records a computed count unless another worker won the race, in
// which case the earlier value stands.
func (c *Counter) store(path string, count int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, ok := c.cache[path]; ok {
		return prior
	}
	c.cache[path] = count
	return count
}
