package projection_test

import (
	"testing"

	"meridian/internal/frame"
	"meridian/internal/projection"
)

func TestOrientationNormalized(t *testing.T) {
	cases := []struct {
		in   projection.Orientation
		want projection.Orientation
	}{
		{projection.Orientation{Yaw: -90}, projection.Orientation{Yaw: 270}},
		{projection.Orientation{Yaw: 450}, projection.Orientation{Yaw: 90}},
		{projection.Orientation{Pitch: 100}, projection.Orientation{Pitch: 90}},
		{projection.Orientation{Pitch: -120}, projection.Orientation{Pitch: -90}},
		{projection.Orientation{Roll: 200}, projection.Orientation{Roll: 180}},
		{projection.Orientation{Roll: -181}, projection.Orientation{Roll: -180}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalized(); got != tc.want {
			t.Fatalf("Normalized(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestOrientationIsZero(t *testing.T) {
	for _, o := range []projection.Orientation{
		{},
		{Yaw: 360},
		{Yaw: -720},
	} {
		if !o.IsZero() {
			t.Fatalf("%+v should normalize to the identity", o)
		}
	}
	if (projection.Orientation{Pitch: 1}).IsZero() {
		t.Fatal("non-zero pitch reported as identity")
	}
}

func TestApplyOrientationZeroReturnsInput(t *testing.T) {
	img := gradient(8, 4)
	if out := projection.ApplyOrientation(img, projection.Orientation{}); out != img {
		t.Fatal("zero orientation must return the input buffer")
	}
	if out := projection.ApplyOrientation(img, projection.Orientation{Yaw: 360}); out != img {
		t.Fatal("full-turn yaw must normalize to the identity")
	}
}

func TestApplyOrientationYawShiftsRight(t *testing.T) {
	// 90° of yaw on a 4-wide frame is one column to the right.
	img := frame.New(4, 2)
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, uint8(10*x+1), 0, 0)
		}
	}
	out := projection.ApplyOrientation(img, projection.Orientation{Yaw: 90})

	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			want := uint8(10*((x+3)%4) + 1)
			if r, _, _ := out.At(x, y); r != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, r, want)
			}
		}
	}
}

func TestApplyOrientationNegativeYawWraps(t *testing.T) {
	// -90° normalizes to 270°, i.e. three columns right on a 4-wide frame.
	img := frame.New(4, 1)
	for x := 0; x < 4; x++ {
		img.Set(x, 0, uint8(10*x+1), 0, 0)
	}
	out := projection.ApplyOrientation(img, projection.Orientation{Yaw: -90})
	if r, _, _ := out.At(0, 0); r != 11 {
		t.Fatalf("column 0 = %d, want source column 1 (11)", r)
	}
}

func TestApplyOrientationPitchShiftsDown(t *testing.T) {
	// 45° of pitch on a 4-high frame is one row down.
	img := frame.New(2, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, 0, uint8(10*y+1), 0)
		}
	}
	out := projection.ApplyOrientation(img, projection.Orientation{Pitch: 45})

	for y := 0; y < 4; y++ {
		want := uint8(10*((y+3)%4) + 1)
		if _, g, _ := out.At(0, y); g != want {
			t.Fatalf("row %d = %d, want %d", y, g, want)
		}
	}
}

func TestApplyOrientationRollHalfTurn(t *testing.T) {
	img := frame.New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, uint8(x*16), uint8(y*16), 128)
		}
	}
	out := projection.ApplyOrientation(img, projection.Orientation{Roll: 180})

	// Interior pixels reflect through the center (2,2): dest (x,y)
	// samples source (4-x, 4-y).
	r, g, _ := out.At(1, 1)
	if r != 3*16 || g != 3*16 {
		t.Fatalf("dest (1,1) = %d,%d, want source (3,3) values %d,%d", r, g, 3*16, 3*16)
	}
	r, g, _ = out.At(3, 2)
	if r != 1*16 || g != 2*16 {
		t.Fatalf("dest (3,2) = %d,%d, want source (1,2) values %d,%d", r, g, 1*16, 2*16)
	}

	// Dest (0,0) samples source (4,4), outside the canvas: black.
	r, g, b := out.At(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("dest (0,0) should be black, got %d,%d,%d", r, g, b)
	}
}

func TestApplyOrientationRollKeepsCenter(t *testing.T) {
	img := solid(9, 9, 0, 0, 0)
	img.Set(4, 4, 200, 150, 100)
	out := projection.ApplyOrientation(img, projection.Orientation{Roll: 37})
	r, g, b := out.At(4, 4)
	if r != 200 || g != 150 || b != 100 {
		t.Fatalf("center pixel moved under roll: %d,%d,%d", r, g, b)
	}
	if out.W != 9 || out.H != 9 {
		t.Fatalf("roll changed dimensions: %dx%d", out.W, out.H)
	}
}
