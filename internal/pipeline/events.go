package pipeline

// EventType labels entries on a run's event stream.
type EventType string

const (
	// EventTask announces the stage about to execute.
	EventTask EventType = "task"
	// EventProgress carries the overall (current, total) stage counters.
	EventProgress EventType = "progress"
	// EventLog carries human-readable notes, including non-fatal warnings.
	EventLog EventType = "log"
	// EventError reports the failure that aborted the run.
	EventError EventType = "error"
	// EventPreview points at the stitched preview image once it exists.
	EventPreview EventType = "preview"
	// EventTerminal is the final entry on every stream.
	EventTerminal EventType = "terminal"
)

// Outcome is the terminal result of a run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Event is one entry on the stream a run's consumer drains. Fields are
// populated per type; Outcome is set on terminal events only.
type Event struct {
	Type        EventType
	Stage       string
	Current     int
	Total       int
	Message     string
	ErrorClass  string
	PreviewPath string
	Outcome     Outcome
}
