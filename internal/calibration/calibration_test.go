package calibration_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"meridian/internal/calibration"
	"meridian/internal/services"
)

const validDoc = `
camera_calibration:
  camera_matrix_left:
    - [1000.0, 0.0, 960.0]
    - [0.0, 1000.0, 540.0]
    - [0.0, 0.0, 1.0]
  camera_matrix_right:
    - [1005.0, 0.0, 958.0]
    - [0.0, 1005.0, 542.0]
    - [0.0, 0.0, 1.0]
  distortion_left: [0.1, -0.2, 0.0, 0.0, 0.0]
  distortion_right: [0.12, -0.21, 0.001, -0.001, 0.0]
  rotation_matrix:
    - [1.0, 0.0, 0.0]
    - [0.0, 1.0, 0.0]
    - [0.0, 0.0, 1.0]
  translation_vector: [100.0, 0.0, 0.0]
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidDocument(t *testing.T) {
	calib, err := calibration.Load(writeDoc(t, validDoc))
	if err != nil {
		t.Fatal(err)
	}
	if calib == nil {
		t.Fatal("expected calibration to be present")
	}

	if got := calib.IntrinsicLeft.At(0, 0); got != 1000.0 {
		t.Fatalf("left fx = %v, want 1000", got)
	}
	if got := calib.IntrinsicLeft.At(0, 2); got != 960.0 {
		t.Fatalf("left cx = %v, want 960", got)
	}
	if got := calib.IntrinsicLeft.At(1, 2); got != 540.0 {
		t.Fatalf("left cy = %v, want 540", got)
	}
	if got := calib.FocalLength(); got != 1000.0 {
		t.Fatalf("focal length = %v, want 1000", got)
	}

	_, dist := calib.Side(calibration.Left)
	if dist.K1 != 0.1 || dist.K2 != -0.2 {
		t.Fatalf("unexpected left distortion: %+v", dist)
	}
	rightK, rightDist := calib.Side(calibration.Right)
	if rightK.At(0, 0) != 1005.0 {
		t.Fatalf("right fx = %v, want 1005", rightK.At(0, 0))
	}
	if rightDist.P1 != 0.001 {
		t.Fatalf("right p1 = %v, want 0.001", rightDist.P1)
	}

	if got := calib.Translation.AtVec(0); got != 100.0 {
		t.Fatalf("translation x = %v, want 100", got)
	}
}

func TestLoadMissingFileIsAbsent(t *testing.T) {
	calib, err := calibration.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error, got %v", err)
	}
	if calib != nil {
		t.Fatal("expected absent calibration for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := calibration.Load(writeDoc(t, "camera_calibration: [not: valid"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.Is(err, services.ErrCalibrationParse) {
		t.Fatalf("expected calibration parse marker, got %v", err)
	}
}

func TestLoadMissingSection(t *testing.T) {
	_, err := calibration.Load(writeDoc(t, "something_else: 1\n"))
	if err == nil {
		t.Fatal("expected error for missing camera_calibration")
	}
	if !errors.Is(err, services.ErrCalibrationParse) {
		t.Fatalf("expected calibration parse marker, got %v", err)
	}
}

func TestLoadMissingField(t *testing.T) {
	doc := `
camera_calibration:
  camera_matrix_left:
    - [1000.0, 0.0, 960.0]
    - [0.0, 1000.0, 540.0]
    - [0.0, 0.0, 1.0]
  distortion_left: [0.1, -0.2, 0.0, 0.0, 0.0]
`
	_, err := calibration.Load(writeDoc(t, doc))
	if err == nil {
		t.Fatal("expected error for partial document")
	}
	if !errors.Is(err, services.ErrCalibrationParse) {
		t.Fatalf("expected calibration parse marker, got %v", err)
	}
}

func TestLoadWrongMatrixShape(t *testing.T) {
	doc := `
camera_calibration:
  camera_matrix_left:
    - [1000.0, 0.0]
    - [0.0, 1000.0]
  camera_matrix_right:
    - [1000.0, 0.0, 960.0]
    - [0.0, 1000.0, 540.0]
    - [0.0, 0.0, 1.0]
  distortion_left: [0.1, -0.2, 0.0, 0.0, 0.0]
  distortion_right: [0.1, -0.2, 0.0, 0.0, 0.0]
  rotation_matrix:
    - [1.0, 0.0, 0.0]
    - [0.0, 1.0, 0.0]
    - [0.0, 0.0, 1.0]
  translation_vector: [100.0, 0.0, 0.0]
`
	_, err := calibration.Load(writeDoc(t, doc))
	if err == nil {
		t.Fatal("expected error for 2x2 intrinsic")
	}
}

func TestLoadWrongDistortionLength(t *testing.T) {
	doc := `
camera_calibration:
  camera_matrix_left:
    - [1000.0, 0.0, 960.0]
    - [0.0, 1000.0, 540.0]
    - [0.0, 0.0, 1.0]
  camera_matrix_right:
    - [1000.0, 0.0, 960.0]
    - [0.0, 1000.0, 540.0]
    - [0.0, 0.0, 1.0]
  distortion_left: [0.1, -0.2]
  distortion_right: [0.1, -0.2, 0.0, 0.0, 0.0]
  rotation_matrix:
    - [1.0, 0.0, 0.0]
    - [0.0, 1.0, 0.0]
    - [0.0, 0.0, 1.0]
  translation_vector: [100.0, 0.0, 0.0]
`
	_, err := calibration.Load(writeDoc(t, doc))
	if err == nil {
		t.Fatal("expected error for short distortion vector")
	}
}

func TestLoadSingularIntrinsic(t *testing.T) {
	doc := `
camera_calibration:
  camera_matrix_left:
    - [0.0, 0.0, 0.0]
    - [0.0, 0.0, 0.0]
    - [0.0, 0.0, 0.0]
  camera_matrix_right:
    - [1000.0, 0.0, 960.0]
    - [0.0, 1000.0, 540.0]
    - [0.0, 0.0, 1.0]
  distortion_left: [0.0, 0.0, 0.0, 0.0, 0.0]
  distortion_right: [0.0, 0.0, 0.0, 0.0, 0.0]
  rotation_matrix:
    - [1.0, 0.0, 0.0]
    - [0.0, 1.0, 0.0]
    - [0.0, 0.0, 1.0]
  translation_vector: [0.0, 0.0, 0.0]
`
	_, err := calibration.Load(writeDoc(t, doc))
	if err == nil {
		t.Fatal("expected error for singular intrinsic")
	}
	if !errors.Is(err, services.ErrCalibrationParse) {
		t.Fatalf("expected calibration parse marker, got %v", err)
	}
}

func TestInverseIntrinsic(t *testing.T) {
	calib, err := calibration.Load(writeDoc(t, validDoc))
	if err != nil {
		t.Fatal(err)
	}
	inv, err := calib.InverseIntrinsic(calibration.Left)
	if err != nil {
		t.Fatal(err)
	}

	var product mat.Dense
	product.Mul(inv, calib.IntrinsicLeft)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := product.At(i, j); math.Abs(got-want) > 1e-9 {
				t.Fatalf("K⁻¹K[%d,%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestDistortionZero(t *testing.T) {
	if !(calibration.Distortion{}).Zero() {
		t.Fatal("zero value should report Zero")
	}
	if (calibration.Distortion{K1: 0.1}).Zero() {
		t.Fatal("non-zero k1 should not report Zero")
	}
}
