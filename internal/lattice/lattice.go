package lattice

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rqnt/internal/knot"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultSpacing   = 30.0
	DefaultStrength  = 500.0
	DefaultSoftening = 50.0
	DefaultEpsilon   = 1e-6
)

var (
	ErrBadSpacing   = errors.New("lattice: spacing must be positive")
	ErrBadSoftening = errors.New("lattice: softening must be positive")
	ErrBadEpsilon   = errors.New("lattice: epsilon must be positive")
	ErrBadViewport  = errors.New("lattice: viewport must have non-negative size")
)

// Params are tuning constants for the displacement field. Strength and
// Softening are stylistic, not derived from anything physical.
type Params struct {
	Spacing   float64
	Strength  float64
	Softening float64
	// Epsilon is the smallest distance used as a divisor.
	Epsilon float64
}

func DefaultParams() Params {
	return Params{
		Spacing:   DefaultSpacing,
		Strength:  DefaultStrength,
		Softening: DefaultSoftening,
		Epsilon:   DefaultEpsilon,
	}
}

func (p Params) Validate() error {
	if !(p.Spacing > 0) {
		return fmt.Errorf("%w: %g", ErrBadSpacing, p.Spacing)
	}
	if !(p.Softening > 0) {
		return fmt.Errorf("%w: %g", ErrBadSoftening, p.Softening)
	}
	if !(p.Epsilon > 0) {
		return fmt.Errorf("%w: %g", ErrBadEpsilon, p.Epsilon)
	}
	return nil
}

type Viewport struct {
	Width, Height float64
}

func (v Viewport) Validate() error {
	if v.Width < 0 || v.Height < 0 || math.IsNaN(v.Width) || math.IsNaN(v.Height) {
		return fmt.Errorf("%w: %gx%g", ErrBadViewport, v.Width, v.Height)
	}
	return nil
}

// Dims returns the row and column counts, including one extra row and column
// so lines reach the far edges.
func (v Viewport) Dims(spacing float64) (rows, cols int) {
	rows = int(math.Floor(v.Height/spacing)) + 2
	cols = int(math.Floor(v.Width/spacing)) + 2
	return rows, cols
}

// Source is a knot projected into pixel space.
type Source struct {
	Pos  r2.Vec
	Mass float64
}

// Project scales normalized knot positions by the viewport size.
func Project(snap knot.Snapshot, vp Viewport) []Source {
	out := make([]Source, snap.Len())
	for i := 0; i < snap.Len(); i++ {
		k := snap.At(i)
		p := k.Position()
		out[i] = Source{Pos: r2.Vec{X: p.X * vp.Width, Y: p.Y * vp.Height}, Mass: k.Mass()}
	}
	return out
}

// Pull is the displacement a single source applies to sample. It points from
// sample toward the source with magnitude mass*K/(dist+D).
func Pull(sample r2.Vec, s Source, p Params) r2.Vec {
	d := r2.Sub(sample, s.Pos)
	dist := r2.Norm(d)
	strength := (s.Mass * p.Strength) / (dist + p.Softening)
	if dist < p.Epsilon {
		dist = p.Epsilon
	}
	return r2.Scale(-strength/dist, d)
}

// Offset sums the pulls of all sources, each evaluated at the undeformed sample.
func Offset(sample r2.Vec, sources []Source, p Params) r2.Vec {
	var acc r2.Vec
	for _, s := range sources {
		acc = r2.Add(acc, Pull(sample, s, p))
	}
	return acc
}

// Displace returns the deformed position of sample.
func Displace(sample r2.Vec, sources []Source, p Params) r2.Vec {
	if len(sources) == 0 {
		return sample
	}
	return r2.Add(sample, Offset(sample, sources, p))
}

// Sample is the undeformed pixel position of grid point (row, col).
func Sample(row, col int, spacing float64) r2.Vec {
	return r2.Vec{X: float64(col) * spacing, Y: float64(row) * spacing}
}
