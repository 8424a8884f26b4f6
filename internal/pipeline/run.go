package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"meridian/internal/discovery"
	"meridian/internal/ledger"
	"meridian/internal/logging"
	"meridian/internal/services"
	"meridian/internal/stage"
)

// Start validates the job, records it in the ledger, and launches the single
// worker goroutine that drives the stage sequence. The returned Execution is
// the caller's handle on the run.
func (p *Pipeline) Start(ctx context.Context, job Job) (*Execution, error) {
	if err := job.validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = discovery.DeriveTitle(job.SourceDir)
	}

	runID := uuid.NewString()
	runDir := filepath.Join(p.cfg.Paths.WorkDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run work directory: %w", err)
	}
	rec, err := p.store.NewRun(ctx, runID, title, job.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	rec.OutputPath = job.OutputPath

	exec := &Execution{
		runID:  runID,
		events: make(chan Event, eventBuffer),
		ctrl:   NewController(),
		done:   make(chan struct{}),
	}
	st := &stage.State{
		RunID:       runID,
		Title:       title,
		SourceDir:   job.SourceDir,
		RunDir:      runDir,
		OutputPath:  job.OutputPath,
		Front:       job.Front,
		Back:        job.Back,
		PreviewPath: filepath.Join(p.cfg.Paths.WorkDir, runID+"_preview.png"),
	}

	go p.run(ctx, exec, st, rec)
	return exec, nil
}

func (p *Pipeline) run(ctx context.Context, exec *Execution, st *stage.State, rec *ledger.Run) {
	ctx = services.WithRunID(ctx, st.RunID)
	logger := logging.WithContext(ctx, p.logger)

	handlers := p.handlers()
	total := len(handlers)
	rec.StageTotal = total

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("title", st.Title),
		logging.String("output", st.OutputPath),
		logging.Int("stages", total),
	)

	for i, handler := range handlers {
		if err := p.gate(ctx, exec.ctrl); err != nil {
			p.finishCancelled(ctx, exec, st, rec, logger)
			return
		}

		name := handler.Name()
		current := i + 1
		exec.emit(ctx, Event{Type: EventTask, Stage: name, Current: current, Total: total, Message: name})
		exec.emit(ctx, Event{Type: EventProgress, Stage: name, Current: current, Total: total})

		rec.Stage = name
		rec.StageCurrent = current
		p.persist(ctx, rec, logger)

		stageCtx := services.WithStage(ctx, name)
		stageLogger := logging.WithContext(stageCtx, p.logger)
		stageStart := time.Now()
		stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

		err := handler.Execute(stageCtx, st)
		p.flushStageNotes(ctx, exec, st, rec, name, current, total)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				stageLogger.Debug("stage interrupted by shutdown")
				p.finishCancelled(ctx, exec, st, rec, logger)
				return
			}
			if !services.Fatal(err) {
				stageLogger.Warn("stage reported a non-fatal error; run continues",
					logging.Error(err),
					logging.String("error_class", services.Classify(err)),
					logging.String(logging.FieldEventType, "stage_warning"),
				)
				exec.emit(ctx, Event{
					Type: EventLog, Stage: name, Current: current, Total: total,
					Message: err.Error(), ErrorClass: services.Classify(err),
				})
				continue
			}
			p.finishFailed(ctx, exec, st, rec, logger, name, err)
			return
		}
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("stage_duration", time.Since(stageStart)),
		)
	}

	p.finishSucceeded(ctx, exec, st, rec, logger)
}

// gate blocks while the run is paused and reports a requested stop. It is
// called between stages only, never during one.
func (p *Pipeline) gate(ctx context.Context, ctrl *Controller) error {
	for {
		if ctrl.Cancelled() {
			return ErrCancelled
		}
		if ctx.Err() != nil {
			return ErrCancelled
		}
		if !ctrl.Paused() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-time.After(pausePollInterval):
		}
	}
}

// flushStageNotes forwards warnings a stage recorded and announces the
// preview image the first time it appears on disk.
func (p *Pipeline) flushStageNotes(ctx context.Context, exec *Execution, st *stage.State, rec *ledger.Run, name string, current, total int) {
	for _, warning := range st.DrainWarnings() {
		exec.emit(ctx, Event{Type: EventLog, Stage: name, Current: current, Total: total, Message: warning})
	}
	if rec.PreviewPath == "" && st.PreviewPath != "" {
		if _, err := os.Stat(st.PreviewPath); err == nil {
			rec.PreviewPath = st.PreviewPath
			exec.emit(ctx, Event{Type: EventPreview, Stage: name, Current: current, Total: total, PreviewPath: st.PreviewPath})
		}
	}
}

// persist writes the run record; the render matters more than the record,
// so ledger trouble downgrades to a warning.
func (p *Pipeline) persist(ctx context.Context, rec *ledger.Run, logger *slog.Logger) {
	if err := p.store.Update(ctx, rec); err != nil {
		logger.Warn("ledger update failed; run continues",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ledger_update_failed"),
		)
	}
}

func (p *Pipeline) finishSucceeded(ctx context.Context, exec *Execution, st *stage.State, rec *ledger.Run, logger *slog.Logger) {
	p.runArchive(ctx, exec, st, logger)
	p.runDelivery(ctx, exec, st, logger)
	p.cleanup(st, logger)

	rec.Status = ledger.StatusCompleted
	rec.ErrorClass = ""
	rec.ErrorMessage = ""
	p.persist(ctx, rec, logger)

	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output", st.OutputPath),
	)
	exec.emit(ctx, Event{
		Type: EventTerminal, Outcome: OutcomeSucceeded,
		Current: rec.StageTotal, Total: rec.StageTotal, Message: st.OutputPath,
	})
	close(exec.events)
	exec.finish(OutcomeSucceeded, nil)
}

func (p *Pipeline) finishFailed(ctx context.Context, exec *Execution, st *stage.State, rec *ledger.Run, logger *slog.Logger, stageName string, err error) {
	class := services.Classify(err)
	message := err.Error()
	logger.Error("stage failed",
		logging.Error(err),
		logging.String("error_class", class),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldErrorHint, "work files kept under "+st.RunDir),
	)
	exec.emit(ctx, Event{
		Type: EventError, Stage: stageName,
		Current: rec.StageCurrent, Total: rec.StageTotal,
		Message: message, ErrorClass: class,
	})
	exec.emit(ctx, Event{Type: EventLog, Stage: stageName, Message: "keeping work files for inspection: " + st.RunDir})

	rec.Status = ledger.StatusFailed
	rec.ErrorClass = class
	rec.ErrorMessage = message
	p.persist(ctx, rec, logger)

	exec.emit(ctx, Event{
		Type: EventTerminal, Outcome: OutcomeFailed, Stage: stageName,
		Current: rec.StageCurrent, Total: rec.StageTotal,
		Message: message, ErrorClass: class,
	})
	close(exec.events)
	exec.finish(OutcomeFailed, err)
}

func (p *Pipeline) finishCancelled(ctx context.Context, exec *Execution, st *stage.State, rec *ledger.Run, logger *slog.Logger) {
	logger.Info("run cancelled",
		logging.String(logging.FieldEventType, "run_cancelled"),
		logging.String("work_dir", st.RunDir),
	)
	rec.Status = ledger.StatusCancelled
	p.persist(ctx, rec, logger)

	exec.emit(ctx, Event{
		Type: EventTerminal, Outcome: OutcomeCancelled,
		Current: rec.StageCurrent, Total: rec.StageTotal,
	})
	close(exec.events)
	exec.finish(OutcomeCancelled, ErrCancelled)
}

// runArchive encodes the archival master after a successful run. Failure
// never fails the run; the delivered render already exists.
func (p *Pipeline) runArchive(ctx context.Context, exec *Execution, st *stage.State, logger *slog.Logger) {
	if !p.cfg.Archive.Enabled {
		return
	}
	if p.archiver == nil {
		logger.Warn("archive enabled but no archiver configured")
		return
	}
	logger.Info("archiving render", logging.String("archive_dir", p.cfg.Archive.Dir))
	archived, err := p.archiver.Archive(ctx, st.OutputPath, p.cfg.Archive.Dir)
	if err != nil {
		logger.Error("archive encode failed; run completes without an archival master",
			logging.Error(err),
			logging.String(logging.FieldEventType, "archive_failed"),
		)
		exec.emit(ctx, Event{Type: EventLog, Message: "archive failed: " + err.Error()})
		return
	}
	logger.Info("archival master written", logging.String("archive_path", archived))
	exec.emit(ctx, Event{Type: EventLog, Message: "archival master written: " + archived})
}

// runDelivery uploads the finished render and, when present, the preview
// image. Same policy as archive: failures log and the run completes.
func (p *Pipeline) runDelivery(ctx context.Context, exec *Execution, st *stage.State, logger *slog.Logger) {
	if !p.cfg.Delivery.Enabled {
		return
	}
	if p.uploader == nil {
		logger.Warn("delivery enabled but no uploader configured")
		return
	}
	uploads := []string{st.OutputPath}
	if _, err := os.Stat(st.PreviewPath); err == nil {
		uploads = append(uploads, st.PreviewPath)
	}
	for _, path := range uploads {
		key, err := p.uploader.Upload(ctx, path)
		if err != nil {
			logger.Error("upload failed; run completes without delivery",
				logging.Error(err),
				logging.String("file", path),
				logging.String(logging.FieldEventType, "delivery_failed"),
			)
			exec.emit(ctx, Event{Type: EventLog, Message: "upload failed: " + err.Error()})
			continue
		}
		logger.Info("render uploaded", logging.String("object_key", key))
	}
}

// cleanup removes the run's temp artifacts. Reached only after full success;
// failed and cancelled runs keep their work files for inspection.
func (p *Pipeline) cleanup(st *stage.State, logger *slog.Logger) {
	if err := os.RemoveAll(st.RunDir); err != nil {
		logger.Warn("temp cleanup failed; stale files remain",
			logging.Error(err),
			logging.String("work_dir", st.RunDir),
		)
		return
	}
	logger.Debug("temp artifacts removed", logging.String("work_dir", st.RunDir))
}
