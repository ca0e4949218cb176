package lattice

import (
	"github.com/san-kum/rqnt/internal/knot"
	"gonum.org/v1/gonum/spatial/r2"
)

// Probe is the displacement at a single pixel coordinate.
type Probe struct {
	Sample    r2.Vec
	Displaced r2.Vec
	Offset    r2.Vec
	Magnitude float64
}

func ProbeAt(sample r2.Vec, vp Viewport, snap knot.Snapshot, p Params) Probe {
	off := Offset(sample, Project(snap, vp), p)
	return Probe{
		Sample:    sample,
		Displaced: r2.Add(sample, off),
		Offset:    off,
		Magnitude: r2.Norm(off),
	}
}

// Profile samples the displacement magnitude along the horizontal line y,
// n points spread evenly across the viewport width.
func Profile(y float64, n int, vp Viewport, snap knot.Snapshot, p Params) []float64 {
	if n < 2 {
		n = 2
	}
	sources := Project(snap, vp)
	out := make([]float64, n)
	for i := range out {
		x := vp.Width * float64(i) / float64(n-1)
		out[i] = r2.Norm(Offset(r2.Vec{X: x, Y: y}, sources, p))
	}
	return out
}
