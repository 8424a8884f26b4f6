package pipeline

import "context"

// eventBuffer sizes the stream so an ordinary run never blocks on a slow
// consumer.
const eventBuffer = 32

// Execution is a started run: its event stream, its controller, and its
// terminal result.
type Execution struct {
	runID  string
	events chan Event
	ctrl   *Controller

	done    chan struct{}
	outcome Outcome
	err     error
}

// RunID returns the UUID this run is recorded under.
func (e *Execution) RunID() string { return e.runID }

// Events returns the run's event stream. The worker closes it after the
// terminal event; consumers must drain it.
func (e *Execution) Events() <-chan Event { return e.events }

// Controller returns the shared pause/cancel flags for this run.
func (e *Execution) Controller() *Controller { return e.ctrl }

// Wait blocks until the worker finishes and returns the terminal outcome.
// Cancelled runs return ErrCancelled, which callers treat as a stop rather
// than a failure.
func (e *Execution) Wait() (Outcome, error) {
	<-e.done
	return e.outcome, e.err
}

func (e *Execution) finish(outcome Outcome, err error) {
	e.outcome = outcome
	e.err = err
	close(e.done)
}

// emit delivers one event unless the surrounding context is already gone.
func (e *Execution) emit(ctx context.Context, evt Event) {
	select {
	case e.events <- evt:
	case <-ctx.Done():
	}
}
