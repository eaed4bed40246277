// Package runner coordinates at most one in-flight packaging run. Every run
// gets a strictly increasing identifier; starting a new run or cancelling
// supersedes the current one, and results from superseded runs are discarded
// when they eventually land.
package runner

import (
	"context"
	"errors"

	"github.com/repopick/repopick/internal/logger"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	Success Outcome = iota
	Failure
	Cancelled
)

// Result is delivered on the results channel when a run's background task
// finishes for any reason.
type Result struct {
	ID      uint64
	Outcome Outcome
	Message string
	Err     error
}

// RunFunc performs the actual packaging work. It must honor ctx: when ctx is
// cancelled it should return promptly, dropping the child process so the OS
// reclaims it.
type RunFunc func(ctx context.Context) (string, error)

// Coordinator owns the current-run identifier and cancellation handle. All
// methods are called from the control loop only; background tasks communicate
// exclusively through the results channel.
type Coordinator struct {
	nextID    uint64
	currentID uint64 // 0 means no run is current
	cancel    context.CancelFunc
	results   chan Result
}

func NewCoordinator() *Coordinator {
	// Buffered so a superseded task can deliver its (soon-discarded) result
	// and exit without waiting on the control loop.
	return &Coordinator{results: make(chan Result, 8)}
}

// Start launches fn as the new current run, cancelling any run in flight.
// The superseded run's identifier stops being current immediately, so its
// eventual result is recognized as stale.
func (c *Coordinator) Start(fn RunFunc) uint64 {
	c.Cancel()

	c.nextID++
	id := c.nextID
	c.currentID = id

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		defer cancel()
		msg, err := fn(ctx)

		res := Result{ID: id}
		switch {
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			res.Outcome = Cancelled
		case err != nil:
			res.Outcome = Failure
			res.Err = err
		default:
			res.Outcome = Success
			res.Message = msg
		}
		c.results <- res
	}()

	logger.Get().Info().Uint64("id", id).Msg("run started")
	return id
}

// Cancel signals the current run, if any, and clears it. The task's terminal
// result still arrives on the channel and is then discarded by Apply.
func (c *Coordinator) Cancel() bool {
	if c.currentID == 0 {
		return false
	}
	logger.Get().Info().Uint64("id", c.currentID).Msg("run cancelled")
	c.cancel()
	c.cancel = nil
	c.currentID = 0
	return true
}

// Running reports whether a run is current.
func (c *Coordinator) Running() bool {
	return c.currentID != 0
}

// Results is drained by the control loop's select.
func (c *Coordinator) Results() <-chan Result {
	return c.results
}

// Apply checks a delivered result against the current identifier. Stale
// results — any identifier that is not current, however late it arrives —
// are discarded unconditionally. A matching result clears the current run.
func (c *Coordinator) Apply(res Result) bool {
	if res.ID != c.currentID {
		logger.Get().Debug().Uint64("id", res.ID).Uint64("current", c.currentID).Msg("discarding stale run result")
		return false
	}
	c.currentID = 0
	c.cancel = nil
	return true
}
