package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the stitching failure taxonomy. Stage code wraps
// collaborator failures with exactly one marker so the orchestrator and the
// ledger can classify outcomes without string matching.
var (
	ErrCalibrationParse = errors.New("calibration parse failure")
	ErrDiscoveryIO      = errors.New("discovery io failure")
	ErrConcatenation    = errors.New("concatenation failure")
	ErrSyncAdjust       = errors.New("sync adjustment failure")
	ErrStitch           = errors.New("stitch failure")
	ErrEncode           = errors.New("encode failure")
	ErrMetadata         = errors.New("metadata failure")
	ErrExternalTool     = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether a stage error must abort the run. Metadata injection
// failures degrade to a warning; everything else is fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrMetadata)
}

// Classify maps an error to the taxonomy label persisted in the run ledger.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCalibrationParse):
		return "calibration_parse_failure"
	case errors.Is(err, ErrDiscoveryIO):
		return "discovery_io_failure"
	case errors.Is(err, ErrConcatenation):
		return "concatenation_failure"
	case errors.Is(err, ErrSyncAdjust):
		return "sync_adjustment_failure"
	case errors.Is(err, ErrStitch):
		return "stitch_failure"
	case errors.Is(err, ErrEncode):
		return "encode_failure"
	case errors.Is(err, ErrMetadata):
		return "metadata_failure"
	case errors.Is(err, ErrExternalTool):
		return "external_tool_error"
	default:
		return "unknown_failure"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
