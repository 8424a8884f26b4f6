package pipeline

import (
	"log/slog"

	"meridian/internal/config"
	"meridian/internal/discovery"
	"meridian/internal/ledger"
	"meridian/internal/logging"
	"meridian/internal/media/ffprobe"
	"meridian/internal/projection"
	"meridian/internal/services/archive"
	"meridian/internal/services/delivery"
	"meridian/internal/services/ffmpeg"
	"meridian/internal/services/spatial"
	"meridian/internal/stage"
)

// Pipeline owns the collaborators a run needs and launches run workers.
type Pipeline struct {
	cfg      *config.Config
	store    *ledger.Store
	logger   *slog.Logger
	ffmpeg   ffmpeg.Client
	spatial  spatial.Client
	archiver archive.Archiver
	uploader delivery.Uploader
}

// Option overrides one collaborator, mainly so tests can substitute fakes.
type Option func(*Pipeline)

// WithFFmpeg substitutes the stream preparation client.
func WithFFmpeg(client ffmpeg.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.ffmpeg = client
		}
	}
}

// WithSpatial substitutes the spherical metadata client.
func WithSpatial(client spatial.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.spatial = client
		}
	}
}

// WithArchiver substitutes the archival encoder.
func WithArchiver(a archive.Archiver) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.archiver = a
		}
	}
}

// WithUploader wires the delivery uploader. Without one, delivery is skipped
// even when enabled in configuration.
func WithUploader(u delivery.Uploader) Option {
	return func(p *Pipeline) {
		if u != nil {
			p.uploader = u
		}
	}
}

// New builds a pipeline around the given config, ledger store, and logger.
// Collaborators default to the CLI-backed implementations.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{cfg: cfg, store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.ffmpeg == nil {
		p.ffmpeg = ffmpeg.New(
			ffmpeg.WithBinary(cfg.FFmpegBinary()),
			ffmpeg.WithProbe(ffprobe.NewCLI(cfg.FFprobeBinary())),
		)
	}
	if p.spatial == nil {
		p.spatial = spatial.New(
			spatial.WithExifTool(cfg.ExifToolBinary()),
			spatial.WithFFmpeg(cfg.FFmpegBinary()),
		)
	}
	if p.archiver == nil {
		p.archiver = archive.NewLibrary(logger)
	}
	return p
}

// handlers assembles the fixed stage sequence for one run.
func (p *Pipeline) handlers() []stage.Handler {
	cfg := p.cfg
	return []stage.Handler{
		&calibrationStage{path: cfg.Calibration.File, logger: p.logger},
		&concatStage{role: discovery.RoleFront, ffmpeg: p.ffmpeg, logger: p.logger},
		&concatStage{role: discovery.RoleBack, ffmpeg: p.ffmpeg, logger: p.logger},
		&syncStage{offsetFrames: cfg.Footage.SyncOffsetFrames, ffmpeg: p.ffmpeg, logger: p.logger},
		&stitchStage{
			ffmpeg:  p.ffmpeg,
			focal:   cfg.Calibration.FocalLength,
			feather: cfg.Stitch.FeatherWidth,
			outW:    cfg.Stitch.OutputWidth,
			outH:    cfg.Stitch.OutputHeight,
			orient: projection.Orientation{
				Yaw:   cfg.Stitch.Yaw,
				Pitch: cfg.Stitch.Pitch,
				Roll:  cfg.Stitch.Roll,
			},
			workers: cfg.Stitch.Workers,
			logger:  p.logger,
		},
		&encodeStage{ffmpeg: p.ffmpeg, crf: cfg.Encode.CRF, preset: cfg.Encode.Preset, logger: p.logger},
		&finalizeStage{
			spatial: p.spatial,
			enabled: cfg.Metadata.Enabled,
			compat:  cfg.Metadata.Insta360Compat,
			meta: spatial.Metadata{
				Title:       cfg.Metadata.Title,
				Description: cfg.Metadata.Description,
			},
			logger: p.logger,
		},
	}
}
