package archive

import (
	"log/slog"
	"strings"

	draptolib "github.com/five82/drapto"
)

// progressStep is the percent granularity at which throttled progress
// callbacks reach the log.
const progressStep = 5.0

// progressThrottle drops repetitive progress callbacks. A callback is
// admitted when its stage changes or its percent enters a new step, so a
// long encode produces a bounded number of log lines.
type progressThrottle struct {
	stage  string
	bucket int
}

func (t *progressThrottle) admit(stage string, percent float64) bool {
	admitted := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != t.stage {
		t.stage = stage
		t.bucket = -1
		admitted = true
	}
	if percent >= 0 {
		if percent > 100 {
			percent = 100
		}
		if bucket := int(percent / progressStep); bucket > t.bucket {
			t.bucket = bucket
			admitted = true
		}
	}
	return admitted
}

// logReporter adapts the Drapto Reporter interface onto the run's logger so
// archival progress lands in the same stream as the rest of the pipeline.
type logReporter struct {
	logger   *slog.Logger
	throttle progressThrottle
}

func newLogReporter(logger *slog.Logger) *logReporter {
	return &logReporter{logger: logger, throttle: progressThrottle{bucket: -1}}
}

func (r *logReporter) Hardware(s draptolib.HardwareSummary) {
	r.logger.Debug("archive encoder hardware", "hostname", s.Hostname)
}

func (r *logReporter) Initialization(s draptolib.InitializationSummary) {
	r.logger.Info("archive encode starting",
		"input", s.InputFile,
		"output", s.OutputFile,
		"resolution", s.Resolution,
		"dynamic_range", s.DynamicRange,
	)
}

func (r *logReporter) StageProgress(s draptolib.StageProgress) {
	if !r.throttle.admit(s.Stage, float64(s.Percent)) {
		return
	}
	r.logger.Info("archive stage progress",
		"stage", s.Stage,
		"percent", float64(s.Percent),
		"message", s.Message,
	)
}

func (r *logReporter) CropResult(s draptolib.CropSummary) {
	r.logger.Debug("archive crop analysis",
		"crop", s.Crop,
		"required", s.Required,
		"disabled", s.Disabled,
		"candidates", len(s.Candidates),
		"samples", s.TotalSamples,
	)
}

func (r *logReporter) EncodingConfig(s draptolib.EncodingConfigSummary) {
	r.logger.Debug("archive encoding config",
		"encoder", s.Encoder,
		"preset", s.Preset,
		"quality", s.Quality,
	)
}

func (r *logReporter) EncodingStarted(totalFrames uint64) {
	r.logger.Debug("archive encoding started", "total_frames", int64(totalFrames))
}

func (r *logReporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	if !r.throttle.admit("encoding", float64(s.Percent)) {
		return
	}
	r.logger.Info("archive encoding progress",
		"percent", float64(s.Percent),
		"speed", float64(s.Speed),
		"fps", float64(s.FPS),
		"eta", s.ETA,
	)
}

func (r *logReporter) ValidationComplete(s draptolib.ValidationSummary) {
	failed := make([]string, 0, len(s.Steps))
	for _, step := range s.Steps {
		if !step.Passed {
			failed = append(failed, step.Name)
		}
	}
	if s.Passed {
		r.logger.Debug("archive validation passed", "steps", len(s.Steps))
		return
	}
	r.logger.Warn("archive validation failed", "failed_steps", failed)
}

func (r *logReporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.logger.Info("archive encode complete",
		"output", s.OutputPath,
		"original_size", int64(s.OriginalSize),
		"encoded_size", int64(s.EncodedSize),
		"average_speed", float64(s.AverageSpeed),
		"duration", s.TotalTime,
	)
}

func (r *logReporter) Warning(message string) {
	r.logger.Warn("archive encoder warning", "message", message)
}

func (r *logReporter) Error(e draptolib.ReporterError) {
	r.logger.Error("archive encoder error",
		"title", e.Title,
		"message", e.Message,
		"context", e.Context,
		"suggestion", e.Suggestion,
	)
}

func (r *logReporter) OperationComplete(message string) {
	r.logger.Info("archive operation complete", "message", message)
}

func (r *logReporter) BatchStarted(s draptolib.BatchStartInfo) {
	r.logger.Debug("archive batch started", "files", s.TotalFiles)
}

func (r *logReporter) FileProgress(s draptolib.FileProgressContext) {
	r.logger.Debug("archive file progress", "current", s.CurrentFile, "total", s.TotalFiles)
}

func (r *logReporter) BatchComplete(s draptolib.BatchSummary) {
	r.logger.Debug("archive batch complete",
		"successful", s.SuccessfulCount,
		"total", s.TotalFiles,
	)
}

var _ draptolib.Reporter = (*logReporter)(nil)
