package archive

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	draptolib "github.com/five82/drapto"

	"meridian/internal/services"
)

// Archiver produces the AV1 archival master of a finished render.
type Archiver interface {
	Archive(ctx context.Context, inputPath, archiveDir string) (string, error)
}

// Library implements Archiver with the Drapto encoding library, bypassing
// any CLI shell-out.
type Library struct {
	logger *slog.Logger
}

// NewLibrary constructs a Library archiver reporting through logger.
func NewLibrary(logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{logger: logger}
}

// Archive encodes inputPath into archiveDir and returns the master's path.
// The caller decides what a failure means; for the pipeline it is logged and
// the run still completes, because the delivered render already exists.
func (l *Library) Archive(ctx context.Context, inputPath, archiveDir string) (string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return "", errors.New("input path required")
	}
	if strings.TrimSpace(archiveDir) == "" {
		return "", errors.New("archive directory required")
	}

	encoder, err := draptolib.New(draptolib.WithResponsive())
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "archive", "init", "construct encoder", err)
	}

	if _, err := encoder.EncodeWithReporter(ctx, inputPath, archiveDir, newLogReporter(l.logger)); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "archive", "encode", "archival master", err)
	}

	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(archiveDir, stem+".mkv"), nil
}

var _ Archiver = (*Library)(nil)
