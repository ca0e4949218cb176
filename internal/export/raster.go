package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultBackground matches the dark panel the lattice is shown on.
var DefaultBackground = color.NRGBA{R: 8, G: 8, B: 8, A: 255}

const circleSegments = 48

// Raster is a drawing surface backed by an in-memory RGBA image.
type Raster struct {
	Background color.NRGBA

	img *image.RGBA
	z   *vector.Rasterizer
}

func NewRaster(w, h int) *Raster {
	r := &Raster{
		Background: DefaultBackground,
		img:        image.NewRGBA(image.Rect(0, 0, w, h)),
		z:          vector.NewRasterizer(w, h),
	}
	r.z.DrawOp = draw.Over
	r.Clear()
	return r
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
}

func (r *Raster) fill(c color.NRGBA) {
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
	w, h := r.Size()
	r.z.Reset(w, h)
	r.z.DrawOp = draw.Over
}

// StrokePolyline rasterizes each segment as a quad of the given width. The
// rasterizer clamps coverage, so overlapping joints are not painted twice.
func (r *Raster) StrokePolyline(pts []r2.Vec, c color.NRGBA, width float64) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	half := width / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		d := r2.Sub(b, a)
		n := r2.Norm(d)
		if n == 0 || math.IsNaN(n) {
			continue
		}
		off := r2.Scale(half/n, r2.Vec{X: -d.Y, Y: d.X})
		p0, p1 := r2.Add(a, off), r2.Add(b, off)
		p2, p3 := r2.Sub(b, off), r2.Sub(a, off)
		r.z.MoveTo(float32(p0.X), float32(p0.Y))
		r.z.LineTo(float32(p1.X), float32(p1.Y))
		r.z.LineTo(float32(p2.X), float32(p2.Y))
		r.z.LineTo(float32(p3.X), float32(p3.Y))
		r.z.ClosePath()
	}
	r.fill(c)
}

func (r *Raster) FillCircle(center r2.Vec, radius float64, c color.NRGBA) {
	if radius <= 0 {
		return
	}
	for i := 0; i <= circleSegments; i++ {
		th := 2 * math.Pi * float64(i) / circleSegments
		x := float32(center.X + radius*math.Cos(th))
		y := float32(center.Y + radius*math.Sin(th))
		if i == 0 {
			r.z.MoveTo(x, y)
		} else {
			r.z.LineTo(x, y)
		}
	}
	r.z.ClosePath()
	r.fill(c)
}

// FillRadialGradient paints the disc of radius r1, inner color up to r0 and a
// linear fade to outer at r1.
func (r *Raster) FillRadialGradient(center r2.Vec, r0, r1 float64, inner, outer color.NRGBA) {
	if r1 <= 0 {
		return
	}
	b := image.Rect(
		int(math.Floor(center.X-r1)), int(math.Floor(center.Y-r1)),
		int(math.Ceil(center.X+r1))+1, int(math.Ceil(center.Y+r1))+1,
	).Intersect(r.img.Bounds())

	ci := colorful.Color{R: float64(inner.R) / 255, G: float64(inner.G) / 255, B: float64(inner.B) / 255}
	co := colorful.Color{R: float64(outer.R) / 255, G: float64(outer.G) / 255, B: float64(outer.B) / 255}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := math.Hypot(float64(x)+0.5-center.X, float64(y)+0.5-center.Y)
			if d > r1 {
				continue
			}
			t := 0.0
			if d > r0 && r1 > r0 {
				t = (d - r0) / (r1 - r0)
			}
			a := float64(inner.A) + (float64(outer.A)-float64(inner.A))*t
			if a <= 0 {
				continue
			}
			cr, cg, cb := ci.BlendRgb(co, t).RGB255()
			r.blend(x, y, color.NRGBA{R: cr, G: cg, B: cb, A: uint8(math.Round(a))})
		}
	}
}

func (r *Raster) blend(x, y int, c color.NRGBA) {
	i := r.img.PixOffset(x, y)
	px := r.img.Pix[i : i+4 : i+4]
	sa := float64(c.A) / 255
	px[0] = uint8(math.Round(float64(c.R)*sa + float64(px[0])*(1-sa)))
	px[1] = uint8(math.Round(float64(c.G)*sa + float64(px[1])*(1-sa)))
	px[2] = uint8(math.Round(float64(c.B)*sa + float64(px[2])*(1-sa)))
	px[3] = uint8(math.Round(float64(c.A) + float64(px[3])*(1-sa)))
}

// FillText draws s with its baseline starting at the given point.
func (r *Raster) FillText(s string, at r2.Vec, c color.NRGBA) {
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(at.X)), int(math.Round(at.Y))),
	}
	d.DrawString(s)
}

func (r *Raster) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}
