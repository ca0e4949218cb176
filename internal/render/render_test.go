package render

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/lattice"
	"gonum.org/v1/gonum/spatial/r2"
)

type call struct {
	op     string
	pts    []r2.Vec
	r0, r1 float64
	c      color.NRGBA
	text   string
}

type recorder struct {
	w, h  int
	calls []call
	panic bool
}

func (s *recorder) Size() (int, int) { return s.w, s.h }
func (s *recorder) Clear()            { s.calls = append(s.calls, call{op: "clear"}) }
func (s *recorder) StrokePolyline(pts []r2.Vec, c color.NRGBA, width float64) {
	if s.panic {
		panic("surface lost")
	}
	s.calls = append(s.calls, call{op: "stroke", pts: pts, c: c, r0: width})
}
func (s *recorder) FillCircle(center r2.Vec, r float64, c color.NRGBA) {
	s.calls = append(s.calls, call{op: "circle", pts: []r2.Vec{center}, r0: r, c: c})
}
func (s *recorder) FillRadialGradient(center r2.Vec, r0, r1 float64, inner, outer color.NRGBA) {
	s.calls = append(s.calls, call{op: "gradient", pts: []r2.Vec{center}, r0: r0, r1: r1, c: inner})
}
func (s *recorder) FillText(text string, at r2.Vec, c color.NRGBA) {
	s.calls = append(s.calls, call{op: "text", pts: []r2.Vec{at}, text: text, c: c})
}

func (s *recorder) count(op string) int {
	n := 0
	for _, c := range s.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func TestFrameOrder(t *testing.T) {
	surf := &recorder{w: 800, h: 500}
	r := Default()
	r.Frame(surf, knot.DefaultScene(), time.UnixMilli(0))

	if len(surf.calls) == 0 || surf.calls[0].op != "clear" {
		t.Fatal("frame must start by clearing the surface")
	}
	rows, cols := lattice.Viewport{Width: 800, Height: 500}.Dims(lattice.DefaultSpacing)
	if got := surf.count("stroke"); got != rows+cols {
		t.Errorf("expected %d strokes, got %d", rows+cols, got)
	}
	if surf.count("circle") != 2 || surf.count("gradient") != 2 || surf.count("text") != 2 {
		t.Errorf("expected one circle, glow and label per knot, got %d/%d/%d",
			surf.count("circle"), surf.count("gradient"), surf.count("text"))
	}

	// knots are drawn after the grid
	lastStroke, firstCircle := -1, -1
	for i, c := range surf.calls {
		if c.op == "stroke" {
			lastStroke = i
		}
		if c.op == "circle" && firstCircle < 0 {
			firstCircle = i
		}
	}
	if firstCircle < lastStroke {
		t.Error("knots should be drawn over the grid")
	}
}

func TestFrameKnotStyle(t *testing.T) {
	surf := &recorder{w: 800, h: 500}
	Default().Frame(surf, knot.DefaultScene(), time.UnixMilli(0))

	var circles, glows, labels []call
	for _, c := range surf.calls {
		switch c.op {
		case "circle":
			circles = append(circles, c)
		case "gradient":
			glows = append(glows, c)
		case "text":
			labels = append(labels, c)
		case "stroke":
			if c.c != DefaultStyle().GridColor || c.r0 != 1 {
				t.Fatalf("unexpected grid stroke style %v width %g", c.c, c.r0)
			}
		}
	}

	if circles[0].c != knot.Proton.Profile().Color || circles[1].c != knot.Electron.Profile().Color {
		t.Error("circle colors should follow the category table")
	}
	if circles[0].pts[0] != (r2.Vec{X: 240, Y: 200}) {
		t.Errorf("proton drawn at %v, expected (240,200)", circles[0].pts[0])
	}
	if circles[0].r0 != 5 {
		t.Errorf("expected base radius 5 at t=0, got %g", circles[0].r0)
	}
	if glows[0].r0 != 5 || glows[0].r1 != 25 {
		t.Errorf("expected glow 5..25, got %g..%g", glows[0].r0, glows[0].r1)
	}
	if labels[0].text != "Proton" || labels[0].pts[0] != (r2.Vec{X: 250, Y: 190}) {
		t.Errorf("unexpected label %q at %v", labels[0].text, labels[0].pts[0])
	}
}

func TestPulseRadius(t *testing.T) {
	s := DefaultStyle()
	periodMs := 2 * math.Pi * 200
	period := time.Duration(periodMs * float64(time.Millisecond))
	base := time.UnixMilli(1_000)

	if d := math.Abs(s.PulseRadius(base) - s.PulseRadius(base.Add(period))); d > 1e-6 {
		t.Errorf("pulse should repeat after %v, diff %g", period, d)
	}
	for ms := int64(0); ms < 5000; ms += 37 {
		r := s.PulseRadius(time.UnixMilli(ms))
		if r < 3-1e-9 || r > 7+1e-9 {
			t.Fatalf("radius %g out of [3,7]", r)
		}
	}
	peakMs := math.Pi / 2 * 200
	peak := time.UnixMilli(0).Add(time.Duration(peakMs * float64(time.Millisecond)))
	if r := s.PulseRadius(peak); math.Abs(r-7) > 1e-6 {
		t.Errorf("expected peak radius 7, got %g", r)
	}
}

func TestDrawRecoversPanics(t *testing.T) {
	surf := &recorder{w: 100, h: 100, panic: true}
	err := Default().Draw(surf, knot.DefaultScene(), time.Now())
	if !errors.Is(err, ErrFrame) {
		t.Fatalf("expected ErrFrame, got %v", err)
	}

	surf.panic = false
	if err := Default().Draw(surf, knot.DefaultScene(), time.Now()); err != nil {
		t.Errorf("next frame should succeed, got %v", err)
	}
}

func TestDrawNilSurface(t *testing.T) {
	if err := Default().Draw(nil, knot.DefaultScene(), time.Now()); !errors.Is(err, ErrNoSurface) {
		t.Errorf("expected ErrNoSurface, got %v", err)
	}
}

func TestFrameFollowsSurfaceSize(t *testing.T) {
	small := &recorder{w: 60, h: 60}
	Default().Frame(small, knot.NewSnapshot(), time.Now())
	if got := small.count("stroke"); got != 8 {
		t.Errorf("60x60 surface should have 4 rows and 4 columns, got %d strokes", got)
	}
	if small.count("circle") != 0 {
		t.Error("empty scene should draw no knots")
	}
}

func TestDrawMeshReturnsStrokedMesh(t *testing.T) {
	surf := &recorder{w: 200, h: 120}
	r := Default()
	mesh, err := r.DrawMesh(surf, knot.DefaultScene(), time.UnixMilli(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := lattice.Build(lattice.Viewport{Width: 200, Height: 120}, knot.DefaultScene(), r.Params)
	if mesh.Rows != want.Rows || mesh.Cols != want.Cols {
		t.Fatalf("expected %dx%d mesh, got %dx%d", want.Rows, want.Cols, mesh.Rows, mesh.Cols)
	}
	if mesh.Peak(r.Params.Spacing) != want.Peak(r.Params.Spacing) {
		t.Errorf("peak mismatch: %g vs %g", mesh.Peak(r.Params.Spacing), want.Peak(r.Params.Spacing))
	}

	var strokes [][]r2.Vec
	for _, c := range surf.calls {
		if c.op == "stroke" {
			strokes = append(strokes, c.pts)
		}
	}
	lines := mesh.Lines()
	if len(strokes) != len(lines) {
		t.Fatalf("expected %d strokes, got %d", len(lines), len(strokes))
	}
	for i := range lines {
		for j := range lines[i] {
			if strokes[i][j] != lines[i][j] {
				t.Fatalf("stroke %d point %d: %v != %v", i, j, strokes[i][j], lines[i][j])
			}
		}
	}

	surf.panic = true
	if mesh, err := r.DrawMesh(surf, knot.DefaultScene(), time.UnixMilli(0)); !errors.Is(err, ErrFrame) || mesh.Rows != 0 {
		t.Errorf("expected ErrFrame and empty mesh, got %v rows=%d", err, mesh.Rows)
	}
}
