package gui

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

const labelSize = 10

// Surface draws into the current raylib frame. Calls are only valid between
// BeginDrawing and EndDrawing on the window's thread.
type Surface struct {
	Background rl.Color
}

func (Surface) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

func (s Surface) Clear() {
	rl.ClearBackground(s.Background)
}

func (Surface) StrokePolyline(pts []r2.Vec, c color.NRGBA, width float64) {
	col := toColor(c)
	for i := 1; i < len(pts); i++ {
		rl.DrawLineEx(vec(pts[i-1]), vec(pts[i]), float32(width), col)
	}
}

func (Surface) FillCircle(center r2.Vec, r float64, c color.NRGBA) {
	if r <= 0 {
		return
	}
	rl.DrawCircleV(vec(center), float32(r), toColor(c))
}

// FillRadialGradient approximates the two-stop gradient: a solid disc up to
// r0 under a fade from inner to outer across r1.
func (Surface) FillRadialGradient(center r2.Vec, r0, r1 float64, inner, outer color.NRGBA) {
	if r1 <= 0 {
		return
	}
	x, y := int32(math.Round(center.X)), int32(math.Round(center.Y))
	rl.DrawCircleGradient(x, y, float32(r1), toColor(inner), toColor(outer))
	if r0 > 0 {
		rl.DrawCircleV(vec(center), float32(r0), toColor(inner))
	}
}

func (Surface) FillText(s string, at r2.Vec, c color.NRGBA) {
	rl.DrawText(s, int32(math.Round(at.X)), int32(math.Round(at.Y))-labelSize, labelSize, toColor(c))
}

func vec(p r2.Vec) rl.Vector2 {
	return rl.NewVector2(float32(p.X), float32(p.Y))
}

// raylib takes straight (non-premultiplied) alpha in an RGBA struct.
func toColor(c color.NRGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}
