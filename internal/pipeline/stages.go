package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"meridian/internal/blend"
	"meridian/internal/calibration"
	"meridian/internal/discovery"
	"meridian/internal/fileutil"
	"meridian/internal/frame"
	"meridian/internal/logging"
	"meridian/internal/projection"
	"meridian/internal/services"
	"meridian/internal/services/ffmpeg"
	"meridian/internal/services/spatial"
	"meridian/internal/stage"
)

// calibrationStage loads the rig calibration. A missing document is a
// warning; the run continues with undistortion disabled. Malformed content
// is fatal.
type calibrationStage struct {
	path   string
	logger *slog.Logger
}

func (s *calibrationStage) Name() string { return "load calibration" }

func (s *calibrationStage) Execute(ctx context.Context, st *stage.State) error {
	logger := logging.WithContext(ctx, s.logger)
	if strings.TrimSpace(s.path) == "" {
		st.Warn("no calibration configured; lens distortion left untouched")
		logger.Warn("no calibration configured; lens distortion left untouched",
			logging.String(logging.FieldEventType, "calibration_absent"),
		)
		return nil
	}
	calib, err := calibration.Load(s.path)
	if err != nil {
		return err
	}
	if calib == nil {
		st.Warn("calibration file missing; lens distortion left untouched")
		logger.Warn("calibration file missing; lens distortion left untouched",
			logging.String("calibration_file", s.path),
			logging.String(logging.FieldEventType, "calibration_absent"),
		)
		return nil
	}
	st.Calibration = calib
	logger.Info("calibration loaded",
		logging.String("calibration_file", s.path),
		logging.Float64("focal_length", calib.FocalLength()),
	)
	return nil
}

// concatStage joins one camera's ordered segments into a single stream.
type concatStage struct {
	role   discovery.Role
	ffmpeg ffmpeg.Client
	logger *slog.Logger
}

func (s *concatStage) Name() string { return "concatenate " + string(s.role) }

func (s *concatStage) Execute(ctx context.Context, st *stage.State) error {
	inputs := st.Front
	output := filepath.Join(st.RunDir, "front_concat.mp4")
	if s.role == discovery.RoleBack {
		inputs = st.Back
		output = filepath.Join(st.RunDir, "back_concat.mp4")
	}
	logging.WithContext(ctx, s.logger).Info("concatenating segments",
		logging.Int("segments", len(inputs)),
		logging.String("output", output),
	)
	if err := s.ffmpeg.Concat(ctx, inputs, output); err != nil {
		return err
	}
	if s.role == discovery.RoleBack {
		st.BackConcat = output
	} else {
		st.FrontConcat = output
	}
	return nil
}

// syncStage aligns the two streams by the configured frame offset. A zero
// offset means the streams are already aligned, so the stage does nothing
// and later stages consume the concat outputs directly.
type syncStage struct {
	offsetFrames int
	ffmpeg       ffmpeg.Client
	logger       *slog.Logger
}

func (s *syncStage) Name() string { return "adjust sync" }

func (s *syncStage) Execute(ctx context.Context, st *stage.State) error {
	logger := logging.WithContext(ctx, s.logger)
	if s.offsetFrames == 0 {
		logger.Debug("sync offset zero; streams already aligned")
		return nil
	}
	logger.Info("adjusting stream sync", logging.Int("offset_frames", s.offsetFrames))
	front, back, err := s.ffmpeg.AdjustSync(ctx, st.FrontConcat, st.BackConcat, s.offsetFrames, st.RunDir)
	if err != nil {
		return err
	}
	st.FrontSynced = front
	st.BackSynced = back
	return nil
}

// stitchStage composes the representative preview frame: one frame from each
// prepared stream, undistorted, cylindrically warped, feather blended,
// remapped to equirectangular, and reoriented.
type stitchStage struct {
	ffmpeg  ffmpeg.Client
	focal   float64
	feather int
	outW    int
	outH    int
	orient  projection.Orientation
	workers int
	logger  *slog.Logger
}

func (s *stitchStage) Name() string { return "stitch preview" }

func (s *stitchStage) Execute(ctx context.Context, st *stage.State) error {
	if err := stage.RequireArtifact(services.ErrStitch, "stitch preview", st.PreparedFront()); err != nil {
		return err
	}
	if err := stage.RequireArtifact(services.ErrStitch, "stitch preview", st.PreparedBack()); err != nil {
		return err
	}

	frontPNG := filepath.Join(st.RunDir, "front_frame.png")
	backPNG := filepath.Join(st.RunDir, "back_frame.png")
	if err := s.ffmpeg.ExtractFrame(ctx, st.PreparedFront(), frontPNG, 0); err != nil {
		return err
	}
	if err := s.ffmpeg.ExtractFrame(ctx, st.PreparedBack(), backPNG, 0); err != nil {
		return err
	}

	front, err := frame.Load(frontPNG)
	if err != nil {
		return services.Wrap(services.ErrStitch, "stitch", "load front frame",
			"decoding the extracted front frame failed", err)
	}
	back, err := frame.Load(backPNG)
	if err != nil {
		return services.Wrap(services.ErrStitch, "stitch", "load back frame",
			"decoding the extracted back frame failed", err)
	}

	logger := logging.WithContext(ctx, s.logger)
	proj := projection.New(st.Calibration, projection.WithWorkers(s.workers))
	if !proj.HasCalibration() {
		logger.Debug("stitching without undistortion")
	}
	focal := s.focal
	if focal <= 0 {
		focal = proj.FocalLength()
	}

	left := proj.CylindricalWarp(proj.Undistort(front, calibration.Left), focal)
	right := proj.CylindricalWarp(proj.Undistort(back, calibration.Right), focal)

	pano, err := blend.Feather(left, right, s.feather)
	if err != nil {
		return err
	}

	equirect := proj.EquirectangularRemap(pano, s.outW, s.outH)
	final := projection.ApplyOrientation(equirect, s.orient)

	if err := frame.SavePNG(st.PreviewPath, final); err != nil {
		return services.Wrap(services.ErrStitch, "stitch", "save preview",
			"writing the preview image failed", err)
	}
	logger.Info("preview frame stitched",
		logging.Int("width", final.W),
		logging.Int("height", final.H),
		logging.String("preview", st.PreviewPath),
	)
	return nil
}

// encodeStage renders the primary stream to the intermediate output.
type encodeStage struct {
	ffmpeg ffmpeg.Client
	crf    int
	preset string
	logger *slog.Logger
}

func (s *encodeStage) Name() string { return "encode" }

func (s *encodeStage) Execute(ctx context.Context, st *stage.State) error {
	if err := stage.RequireArtifact(services.ErrEncode, "encode", st.PreparedFront()); err != nil {
		return err
	}
	output := filepath.Join(st.RunDir, "encoded.mp4")
	logging.WithContext(ctx, s.logger).Info("encoding primary stream",
		logging.Int("crf", s.crf),
		logging.String("preset", s.preset),
	)
	if err := s.ffmpeg.Encode(ctx, st.PreparedFront(), output, s.crf, s.preset); err != nil {
		return err
	}
	st.EncodedPath = output
	return nil
}

// finalizeStage places the finished render at the output path. With the
// compatibility switch on, the spatial remux produces the delivered file
// directly; otherwise a verified copy lands first and spherical tags are
// injected in place. Injection failures are non-fatal and degrade to a
// warning in the runner.
type finalizeStage struct {
	spatial spatial.Client
	enabled bool
	compat  bool
	meta    spatial.Metadata
	logger  *slog.Logger
}

func (s *finalizeStage) Name() string { return "finalize output" }

func (s *finalizeStage) Execute(ctx context.Context, st *stage.State) error {
	if err := stage.RequireArtifact(services.ErrExternalTool, "finalize output", st.EncodedPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(st.OutputPath), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "finalize", "prepare output directory",
			"cannot create the output directory", err)
	}

	logger := logging.WithContext(ctx, s.logger)
	if !s.enabled {
		logger.Info("metadata injection disabled; delivering plain render",
			logging.String("output", st.OutputPath),
		)
		return s.placeOutput(st)
	}
	if s.compat {
		logger.Info("writing compatibility remux", logging.String("output", st.OutputPath))
		return s.spatial.MakeCompatible(ctx, st.EncodedPath, st.OutputPath)
	}
	if err := s.placeOutput(st); err != nil {
		return err
	}
	logger.Info("injecting spherical metadata", logging.String("output", st.OutputPath))
	return s.spatial.InjectSpherical(ctx, st.OutputPath, s.meta)
}

func (s *finalizeStage) placeOutput(st *stage.State) error {
	if err := fileutil.CopyFileVerified(st.EncodedPath, st.OutputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "finalize", "place output",
			"copying the finished render failed", err)
	}
	return nil
}
