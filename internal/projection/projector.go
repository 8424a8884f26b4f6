package projection

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"meridian/internal/calibration"
)

type lutKey struct {
	w, h int
	f    float64
}

// Projector owns the calibration reference and the per-geometry lookup
// tables reused across every frame of a run.
type Projector struct {
	calib    *calibration.Calibration
	invLeft  *mat.Dense
	invRight *mat.Dense
	workers  int

	mu   sync.Mutex
	luts map[lutKey][]int32
}

// Option adjusts projector construction.
type Option func(*Projector)

// WithWorkers caps the row-parallel sampling pool.
func WithWorkers(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New builds a projector around calib, which may be nil for the
// absent-calibration passthrough mode.
func New(calib *calibration.Calibration, opts ...Option) *Projector {
	p := &Projector{
		calib:   calib,
		workers: runtime.NumCPU(),
		luts:    make(map[lutKey][]int32),
	}
	if calib != nil {
		if inv, err := calib.InverseIntrinsic(calibration.Left); err == nil {
			p.invLeft = inv
		}
		if inv, err := calib.InverseIntrinsic(calibration.Right); err == nil {
			p.invRight = inv
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HasCalibration reports whether undistortion will actually transform
// frames. Callers warn once per run when it is false.
func (p *Projector) HasCalibration() bool {
	return p.calib != nil
}

// FocalLength returns the calibrated focal length, or 0 when absent so the
// cylindrical warp falls back to its width default.
func (p *Projector) FocalLength() float64 {
	if p.calib == nil {
		return 0
	}
	return p.calib.FocalLength()
}

func (p *Projector) inverseFor(cam calibration.Camera) *mat.Dense {
	if cam == calibration.Right {
		return p.invRight
	}
	return p.invLeft
}

// lut returns the cached source-index table for one warp geometry, building
// it on first use. Index -1 marks an out-of-bounds sample.
func (p *Projector) lut(key lutKey, build func() []int32) []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if table, ok := p.luts[key]; ok {
		return table
	}
	table := build()
	p.luts[key] = table
	return table
}
