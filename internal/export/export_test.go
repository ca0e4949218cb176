package export

import (
	"bytes"
	"errors"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/render"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ render.Surface = (*Raster)(nil)
var _ render.Surface = (*SVG)(nil)

func TestRasterClear(t *testing.T) {
	r := NewRaster(20, 10)
	if w, h := r.Size(); w != 20 || h != 10 {
		t.Fatalf("expected 20x10, got %dx%d", w, h)
	}
	r.FillCircle(r2.Vec{X: 10, Y: 5}, 3, color.NRGBA{R: 255, A: 255})
	r.Clear()
	bg := r.Image().RGBAAt(10, 5)
	if bg.R != DefaultBackground.R || bg.A != 255 {
		t.Errorf("clear should restore the background, got %v", bg)
	}
}

func TestRasterCircle(t *testing.T) {
	r := NewRaster(40, 40)
	red := color.NRGBA{R: 239, G: 68, B: 68, A: 255}
	r.FillCircle(r2.Vec{X: 20, Y: 20}, 5, red)

	if c := r.Image().RGBAAt(20, 20); c.R != 239 || c.G != 68 {
		t.Errorf("center should be red, got %v", c)
	}
	if c := r.Image().RGBAAt(2, 2); c.R != DefaultBackground.R {
		t.Errorf("corner should be untouched, got %v", c)
	}
}

func TestRasterStroke(t *testing.T) {
	r := NewRaster(40, 40)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	r.StrokePolyline([]r2.Vec{{X: 0, Y: 20.5}, {X: 20, Y: 20.5}, {X: 40, Y: 20.5}}, white, 1)

	if c := r.Image().RGBAAt(10, 20); c.R < 200 {
		t.Errorf("stroke pixel should be bright, got %v", c)
	}
	if c := r.Image().RGBAAt(10, 10); c.R != DefaultBackground.R {
		t.Errorf("pixel away from the line should be background, got %v", c)
	}

	// degenerate input is ignored
	r.StrokePolyline([]r2.Vec{{X: 1, Y: 1}}, white, 1)
	r.StrokePolyline([]r2.Vec{{X: 1, Y: 1}, {X: 1, Y: 1}}, white, 1)
}

func TestRasterGradientFades(t *testing.T) {
	r := NewRaster(60, 60)
	r.Background = color.NRGBA{A: 255}
	r.Clear()
	inner := color.NRGBA{R: 200, A: 200}
	outer := inner
	outer.A = 0
	r.FillRadialGradient(r2.Vec{X: 30, Y: 30}, 5, 25, inner, outer)

	center := r.Image().RGBAAt(30, 30).R
	mid := r.Image().RGBAAt(45, 30).R
	edge := r.Image().RGBAAt(58, 30).R
	if !(center > mid && mid > edge) {
		t.Errorf("gradient should fade outward: center=%d mid=%d edge=%d", center, mid, edge)
	}
	if edge != 0 {
		t.Errorf("outside the glow radius should stay black, got %d", edge)
	}
}

func TestRasterTextAndPNG(t *testing.T) {
	r := NewRaster(80, 30)
	r.FillText("Proton", r2.Vec{X: 5, Y: 20}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	lit := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 80; x++ {
			if r.Image().RGBAAt(x, y).R > 128 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("text should light some pixels")
	}

	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 80 {
		t.Errorf("unexpected width %d", img.Bounds().Dx())
	}
}

func TestSVGFrame(t *testing.T) {
	s := NewSVG(800, 500)
	render.Default().Frame(s, knot.DefaultScene(), time.UnixMilli(0))
	doc := s.String()

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="800" height="500"`,
		`stroke="#6496ff"`,
		`fill="#ef4444"`,
		`fill="#3b82f6"`,
		`<radialGradient id="glow0"`,
		`<radialGradient id="glow1"`,
		`>Proton</text>`,
		`>Electron</text>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if n := strings.Count(doc, "<path "); n != 18+28 {
		t.Errorf("expected 46 grid paths, got %d", n)
	}

	s.Clear()
	if strings.Contains(s.String(), "<path") {
		t.Error("clear should drop recorded elements")
	}
}

func TestSVGEscapesText(t *testing.T) {
	s := NewSVG(10, 10)
	s.FillText("<a&b>", r2.Vec{}, color.NRGBA{A: 255})
	if !strings.Contains(s.String(), "&lt;a&amp;b&gt;") {
		t.Error("text should be escaped")
	}
}

func TestRecordGIF(t *testing.T) {
	var buf bytes.Buffer
	err := RecordGIF(&buf, render.Default(), knot.DefaultScene(), Recording{
		Width: 120, Height: 90, Frames: 6, Step: 50 * time.Millisecond, Start: time.UnixMilli(0),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 6 {
		t.Errorf("expected 6 frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 5 {
		t.Errorf("expected 5/100s delay, got %d", anim.Delay[0])
	}
}

func TestRecordGIFNoFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := RecordGIF(&buf, render.Default(), knot.DefaultScene(), Recording{Width: 10, Height: 10}); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}
