package stage

import "meridian/internal/calibration"

// State carries the artifacts a run accumulates as its stages execute.
// Exactly one worker goroutine touches it; stages communicate with each
// other only through these fields.
type State struct {
	RunID      string
	Title      string
	SourceDir  string
	RunDir     string
	OutputPath string

	Front []string
	Back  []string

	// Nil when no calibration is configured or the file is absent; the
	// projection stage then leaves lens distortion untouched.
	Calibration *calibration.Calibration

	FrontConcat string
	BackConcat  string
	FrontSynced string
	BackSynced  string
	EncodedPath string
	PreviewPath string

	warnings []string
}

// PreparedFront returns the front stream later stages should consume: the
// sync-adjusted file when the sync stage produced one, otherwise the concat.
func (s *State) PreparedFront() string {
	if s.FrontSynced != "" {
		return s.FrontSynced
	}
	return s.FrontConcat
}

// PreparedBack mirrors PreparedFront for the back stream.
func (s *State) PreparedBack() string {
	if s.BackSynced != "" {
		return s.BackSynced
	}
	return s.BackConcat
}

// Warn records a non-fatal condition for the event stream.
func (s *State) Warn(message string) {
	s.warnings = append(s.warnings, message)
}

// DrainWarnings returns the warnings recorded since the last drain.
func (s *State) DrainWarnings() []string {
	out := s.warnings
	s.warnings = nil
	return out
}
