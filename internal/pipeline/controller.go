package pipeline

import (
	"errors"
	"sync"
	"time"
)

// ErrCancelled reports a cooperative stop requested through the Controller.
// It marks the cancelled outcome, not a failure.
var ErrCancelled = errors.New("run cancelled")

// pausePollInterval is how often a paused worker re-checks its flags.
const pausePollInterval = 100 * time.Millisecond

// Controller carries the guarded cancelled/paused flags shared between a
// run's caller and its single worker goroutine. The worker observes them at
// stage boundaries only; a stage in flight is never interrupted.
type Controller struct {
	mu        sync.Mutex
	cancelled bool
	paused    bool
}

// NewController returns a controller with both flags clear.
func NewController() *Controller {
	return &Controller{}
}

// Cancel requests a stop at the next stage boundary. It also breaks an
// active pause loop.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
}

// Pause suspends progression at the next stage boundary.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume lifts a pause.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Cancelled reports whether a stop has been requested.
func (c *Controller) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Paused reports whether progression is suspended.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
