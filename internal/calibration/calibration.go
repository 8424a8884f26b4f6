package calibration

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"meridian/internal/services"
)

// Camera selects one side of the stereo rig.
type Camera int

const (
	Left Camera = iota
	Right
)

func (c Camera) String() string {
	if c == Right {
		return "right"
	}
	return "left"
}

// Distortion holds Brown-Conrady coefficients in OpenCV order.
type Distortion struct {
	K1, K2, P1, P2, K3 float64
}

// Zero reports whether every coefficient is zero.
func (d Distortion) Zero() bool {
	return d.K1 == 0 && d.K2 == 0 && d.P1 == 0 && d.P2 == 0 && d.K3 == 0
}

// Calibration is the stereo rig model loaded from a calibration document.
// All six fields are present or the calibration is absent; no partial loads.
type Calibration struct {
	IntrinsicLeft   *mat.Dense
	IntrinsicRight  *mat.Dense
	DistortionLeft  Distortion
	DistortionRight Distortion
	Rotation        *mat.Dense
	Translation     *mat.VecDense
}

// Side returns the intrinsic matrix and distortion vector for one camera.
func (c *Calibration) Side(cam Camera) (*mat.Dense, Distortion) {
	if cam == Right {
		return c.IntrinsicRight, c.DistortionRight
	}
	return c.IntrinsicLeft, c.DistortionLeft
}

// FocalLength returns the left camera's horizontal focal length, the value
// the cylindrical warp uses.
func (c *Calibration) FocalLength() float64 {
	return c.IntrinsicLeft.At(0, 0)
}

// InverseIntrinsic computes K⁻¹ for one camera.
func (c *Calibration) InverseIntrinsic(cam Camera) (*mat.Dense, error) {
	k, _ := c.Side(cam)
	var inv mat.Dense
	if err := inv.Inverse(k); err != nil {
		return nil, fmt.Errorf("invert %s intrinsic: %w", cam, err)
	}
	return &inv, nil
}

type document struct {
	CameraCalibration *section `yaml:"camera_calibration"`
}

type section struct {
	CameraMatrixLeft  [][]float64 `yaml:"camera_matrix_left"`
	CameraMatrixRight [][]float64 `yaml:"camera_matrix_right"`
	DistortionLeft    []float64   `yaml:"distortion_left"`
	DistortionRight   []float64   `yaml:"distortion_right"`
	RotationMatrix    [][]float64 `yaml:"rotation_matrix"`
	TranslationVector []float64   `yaml:"translation_vector"`
}

// Load reads the YAML calibration document at path. A missing file is the
// absent-calibration result (nil, nil): runs proceed without undistortion.
// Malformed content is a hard failure.
func Load(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrCalibrationParse, "calibration", "read", "failed to read calibration file", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrCalibrationParse, "calibration", "parse", "invalid yaml", err)
	}
	if doc.CameraCalibration == nil {
		return nil, services.Wrap(services.ErrCalibrationParse, "calibration", "parse", "missing camera_calibration section", nil)
	}

	sec := doc.CameraCalibration
	calib := &Calibration{}

	if calib.IntrinsicLeft, err = denseFromRows(sec.CameraMatrixLeft, 3, 3, "camera_matrix_left"); err != nil {
		return nil, wrapShape(err)
	}
	if calib.IntrinsicRight, err = denseFromRows(sec.CameraMatrixRight, 3, 3, "camera_matrix_right"); err != nil {
		return nil, wrapShape(err)
	}
	if calib.DistortionLeft, err = distortionFromSlice(sec.DistortionLeft, "distortion_left"); err != nil {
		return nil, wrapShape(err)
	}
	if calib.DistortionRight, err = distortionFromSlice(sec.DistortionRight, "distortion_right"); err != nil {
		return nil, wrapShape(err)
	}
	if calib.Rotation, err = denseFromRows(sec.RotationMatrix, 3, 3, "rotation_matrix"); err != nil {
		return nil, wrapShape(err)
	}
	if calib.Translation, err = vectorFromSlice(sec.TranslationVector, 3, "translation_vector"); err != nil {
		return nil, wrapShape(err)
	}

	for _, side := range []Camera{Left, Right} {
		k, _ := calib.Side(side)
		if det := mat.Det(k); math.Abs(det) < 1e-9 {
			return nil, services.Wrap(services.ErrCalibrationParse, "calibration", "validate",
				fmt.Sprintf("%s intrinsic matrix is singular", side), nil)
		}
	}

	return calib, nil
}

func wrapShape(err error) error {
	return services.Wrap(services.ErrCalibrationParse, "calibration", "parse", "invalid calibration shape", err)
}

func denseFromRows(rows [][]float64, wantRows, wantCols int, field string) (*mat.Dense, error) {
	if len(rows) != wantRows {
		return nil, fmt.Errorf("%s: expected %d rows, got %d", field, wantRows, len(rows))
	}
	data := make([]float64, 0, wantRows*wantCols)
	for i, row := range rows {
		if len(row) != wantCols {
			return nil, fmt.Errorf("%s: row %d has %d values, expected %d", field, i, len(row), wantCols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(wantRows, wantCols, data), nil
}

func distortionFromSlice(vals []float64, field string) (Distortion, error) {
	if len(vals) != 5 {
		return Distortion{}, fmt.Errorf("%s: expected 5 coefficients, got %d", field, len(vals))
	}
	return Distortion{K1: vals[0], K2: vals[1], P1: vals[2], P2: vals[3], K3: vals[4]}, nil
}

func vectorFromSlice(vals []float64, want int, field string) (*mat.VecDense, error) {
	if len(vals) != want {
		return nil, fmt.Errorf("%s: expected %d values, got %d", field, want, len(vals))
	}
	return mat.NewVecDense(want, vals), nil
}
