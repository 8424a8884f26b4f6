package pipeline

import (
	"errors"
	"strings"
)

// Job describes one stitching run: the two ordered camera streams and where
// the finished render lands. Title and SourceDir feed the run record; when
// Title is empty it is derived from the source directory name.
type Job struct {
	Title      string
	SourceDir  string
	Front      []string
	Back       []string
	OutputPath string
}

func (j Job) validate() error {
	if len(j.Front) == 0 {
		return errors.New("front camera footage required")
	}
	if len(j.Back) == 0 {
		return errors.New("back camera footage required")
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		return errors.New("output path required")
	}
	return nil
}
