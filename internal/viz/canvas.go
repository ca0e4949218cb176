package viz

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid with one ink color per cell. As a drawing
// surface it is addressed in pixels; Scale pixels map onto one dot.
type Canvas struct {
	Width, Height int
	Scale         float64
	Background    colorful.Color
	// MinAlpha keeps faint strokes legible on a terminal.
	MinAlpha float64
	Grid     [][]rune

	ink   [][]colorful.Color
	inked [][]bool
	text  [][]rune
	pen   colorful.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:      w,
		Height:     h,
		Scale:      1,
		Background: colorful.Color{R: 8.0 / 255, G: 8.0 / 255, B: 8.0 / 255},
		MinAlpha:   0.5,
		Grid:       make([][]rune, h),
		ink:        make([][]colorful.Color, h),
		inked:      make([][]bool, h),
		text:       make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.ink[i] = make([]colorful.Color, w)
		c.inked[i] = make([]bool, w)
		c.text[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set lights the dot at (x, y) in dot coordinates with the current pen.
// The canvas size in dots is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.ink[row][col], c.inked[row][col] = c.pen, true
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.inked[i][j] = false
			c.text[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) dot(p r2.Vec) (int, int) {
	return int(math.Round(p.X / c.Scale)), int(math.Round(p.Y / c.Scale))
}

func (c *Canvas) tone(col color.NRGBA, a float64) colorful.Color {
	if a < c.MinAlpha {
		a = c.MinAlpha
	}
	src := colorful.Color{R: float64(col.R) / 255, G: float64(col.G) / 255, B: float64(col.B) / 255}
	return c.Background.BlendRgb(src, a)
}

func (c *Canvas) Size() (int, int) {
	return int(float64(c.Width*2) * c.Scale), int(float64(c.Height*4) * c.Scale)
}

func (c *Canvas) StrokePolyline(pts []r2.Vec, col color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	c.pen = c.tone(col, float64(col.A)/255)
	for i := 1; i < len(pts); i++ {
		x0, y0 := c.dot(pts[i-1])
		x1, y1 := c.dot(pts[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// FillCircle lights every dot inside the circle and always at least the
// center dot.
func (c *Canvas) FillCircle(center r2.Vec, r float64, col color.NRGBA) {
	if r <= 0 {
		return
	}
	c.pen = c.tone(col, 1)
	cx, cy := c.dot(center)
	rd := r / c.Scale
	n := int(math.Ceil(rd))
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if float64(dx*dx+dy*dy) <= rd*rd {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
	c.Set(cx, cy)
}

// FillRadialGradient tints the cells under the gradient instead of lighting
// dots, so the glow colors whatever lattice passes through it.
func (c *Canvas) FillRadialGradient(center r2.Vec, r0, r1 float64, inner, outer color.NRGBA) {
	if r1 <= 0 {
		return
	}
	cw, ch := 2*c.Scale, 4*c.Scale
	src := colorful.Color{R: float64(inner.R) / 255, G: float64(inner.G) / 255, B: float64(inner.B) / 255}
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if !c.inked[row][col] {
				continue
			}
			mid := r2.Vec{X: (float64(col) + 0.5) * cw, Y: (float64(row) + 0.5) * ch}
			d := r2.Norm(r2.Sub(mid, center))
			if d > r1 {
				continue
			}
			t := 0.0
			if d > r0 && r1 > r0 {
				t = (d - r0) / (r1 - r0)
			}
			a := (float64(inner.A) + (float64(outer.A)-float64(inner.A))*t) / 255
			if a <= 0 {
				continue
			}
			c.ink[row][col] = c.ink[row][col].BlendRgb(src, a)
		}
	}
}

// FillText overlays s on the cells starting at the given pixel position.
func (c *Canvas) FillText(s string, at r2.Vec, col color.NRGBA) {
	x, y := c.dot(at)
	row, start, ok := c.cell(x, y)
	if !ok {
		return
	}
	ink := c.tone(col, float64(col.A)/255)
	for i, ch := range []rune(s) {
		if start+i >= c.Width {
			break
		}
		c.text[row][start+i] = ch
		c.ink[row][start+i], c.inked[row][start+i] = ink, true
	}
}

func (c *Canvas) glyph(row, col int) rune {
	if t := c.text[row][col]; t != 0 {
		return t
	}
	return c.Grid[row][col]
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := range c.Grid {
		for col := range c.Grid[row] {
			b.WriteRune(c.glyph(row, col))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders the canvas with each run of equally inked cells in one style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := range c.Grid {
		var run []rune
		var runInk string
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runInk == "" {
				b.WriteString(string(run))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runInk)).Render(string(run)))
			}
			run = run[:0]
		}
		for col := range c.Grid[row] {
			ink := ""
			if c.inked[row][col] {
				ink = c.ink[row][col].Clamped().Hex()
			}
			if ink != runInk {
				flush()
				runInk = ink
			}
			run = append(run, c.glyph(row, col))
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

// Ink returns the color of a cell and whether anything was drawn there.
func (c *Canvas) Ink(row, col int) (colorful.Color, bool) {
	return c.ink[row][col], c.inked[row][col]
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
