package lattice

import (
	"github.com/san-kum/rqnt/internal/knot"
	"gonum.org/v1/gonum/spatial/r2"
)

// Mesh is one frame's deformed lattice. Points[r][c] is the displaced sample
// at row r, column c.
type Mesh struct {
	Rows, Cols int
	Points     [][]r2.Vec
}

// Build displaces every sample point of the viewport's lattice.
func Build(vp Viewport, snap knot.Snapshot, p Params) Mesh {
	rows, cols := vp.Dims(p.Spacing)
	sources := Project(snap, vp)

	pts := make([][]r2.Vec, rows)
	parallelFor(rows, minRowsPerWorker, func(start, end int) {
		for r := start; r < end; r++ {
			pts[r] = make([]r2.Vec, cols)
			for c := range pts[r] {
				pts[r][c] = Displace(Sample(r, c, p.Spacing), sources, p)
			}
		}
	})
	return Mesh{Rows: rows, Cols: cols, Points: pts}
}

// RowLine joins the displaced points of row r in increasing column order.
func (m Mesh) RowLine(r int) []r2.Vec {
	line := make([]r2.Vec, m.Cols)
	copy(line, m.Points[r])
	return line
}

// ColLine joins the displaced points of column c in increasing row order.
func (m Mesh) ColLine(c int) []r2.Vec {
	line := make([]r2.Vec, m.Rows)
	for r := 0; r < m.Rows; r++ {
		line[r] = m.Points[r][c]
	}
	return line
}

// Lines returns all row lines followed by all column lines.
func (m Mesh) Lines() [][]r2.Vec {
	out := make([][]r2.Vec, 0, m.Rows+m.Cols)
	for r := 0; r < m.Rows; r++ {
		out = append(out, m.RowLine(r))
	}
	for c := 0; c < m.Cols; c++ {
		out = append(out, m.ColLine(c))
	}
	return out
}

// Peak is the largest displacement magnitude in the mesh.
func (m Mesh) Peak(spacing float64) float64 {
	peak := 0.0
	for r, row := range m.Points {
		for c, pt := range row {
			if d := r2.Norm(r2.Sub(pt, Sample(r, c, spacing))); d > peak {
				peak = d
			}
		}
	}
	return peak
}
