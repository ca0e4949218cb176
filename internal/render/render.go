package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/lattice"
	"gonum.org/v1/gonum/spatial/r2"
)

// Surface is an opaque 2D drawing target sized in pixels.
type Surface interface {
	Size() (w, h int)
	Clear()
	StrokePolyline(pts []r2.Vec, c color.NRGBA, width float64)
	FillCircle(center r2.Vec, r float64, c color.NRGBA)
	FillRadialGradient(center r2.Vec, r0, r1 float64, inner, outer color.NRGBA)
	FillText(s string, at r2.Vec, c color.NRGBA)
}

var (
	ErrFrame     = errors.New("render: frame failed")
	ErrNoSurface = errors.New("render: drawing surface unavailable")
)

type Style struct {
	GridColor   color.NRGBA
	LineWidth   float64
	BaseRadius  float64
	Amplitude   float64
	PulsePeriod float64 // ms divisor inside sin
	GlowInner   float64
	GlowOuter   float64
	LabelOffset r2.Vec
	LabelColor  color.NRGBA
}

func DefaultStyle() Style {
	return Style{
		GridColor:   color.NRGBA{R: 100, G: 150, B: 255, A: 38},
		LineWidth:   1,
		BaseRadius:  5,
		Amplitude:   2,
		PulsePeriod: 200,
		GlowInner:   5,
		GlowOuter:   25,
		LabelOffset: r2.Vec{X: 10, Y: -10},
		LabelColor:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// PulseRadius oscillates around BaseRadius with period 2*pi*PulsePeriod ms.
func (s Style) PulseRadius(now time.Time) float64 {
	ms := float64(now.UnixNano()) / float64(time.Millisecond)
	return s.BaseRadius + math.Sin(ms/s.PulsePeriod)*s.Amplitude
}

// Renderer draws one frame of the lattice and its knots.
type Renderer struct {
	Params lattice.Params
	Style  Style
}

func New(p lattice.Params, s Style) *Renderer {
	return &Renderer{Params: p, Style: s}
}

func Default() *Renderer {
	return New(lattice.DefaultParams(), DefaultStyle())
}

// Frame clears the surface, strokes the deformed grid and draws every knot.
// It returns the mesh it stroked.
func (r *Renderer) Frame(s Surface, snap knot.Snapshot, now time.Time) lattice.Mesh {
	w, h := s.Size()
	vp := lattice.Viewport{Width: float64(w), Height: float64(h)}

	s.Clear()

	mesh := lattice.Build(vp, snap, r.Params)
	for _, line := range mesh.Lines() {
		s.StrokePolyline(line, r.Style.GridColor, r.Style.LineWidth)
	}

	radius := r.Style.PulseRadius(now)
	for i := 0; i < snap.Len(); i++ {
		k := snap.At(i)
		prof := k.Category().Profile()
		pos := k.Position()
		px := r2.Vec{X: pos.X * vp.Width, Y: pos.Y * vp.Height}

		s.FillCircle(px, radius, prof.Color)
		transparent := prof.Glow
		transparent.A = 0
		s.FillRadialGradient(px, r.Style.GlowInner, r.Style.GlowOuter, prof.Glow, transparent)
		s.FillText(prof.Label, r2.Add(px, r.Style.LabelOffset), r.Style.LabelColor)
	}
	return mesh
}

// Draw runs Frame and turns a panic from the surface into an error so one bad
// frame does not take down the loop.
func (r *Renderer) Draw(s Surface, snap knot.Snapshot, now time.Time) error {
	_, err := r.DrawMesh(s, snap, now)
	return err
}

// DrawMesh is Draw for hosts that also read the frame's mesh.
func (r *Renderer) DrawMesh(s Surface, snap knot.Snapshot, now time.Time) (mesh lattice.Mesh, err error) {
	if s == nil {
		return lattice.Mesh{}, ErrNoSurface
	}
	defer func() {
		if rec := recover(); rec != nil {
			mesh, err = lattice.Mesh{}, fmt.Errorf("%w: %v", ErrFrame, rec)
		}
	}()
	return r.Frame(s, snap, now), nil
}
