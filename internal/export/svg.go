package export

import (
	"fmt"
	"html"
	"image/color"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// SVG is a drawing surface that records each call as an SVG element.
type SVG struct {
	Width, Height int
	Background    color.NRGBA

	defs  strings.Builder
	body  strings.Builder
	nGrad int
}

func NewSVG(w, h int) *SVG {
	return &SVG{Width: w, Height: h, Background: DefaultBackground}
}

func (s *SVG) Size() (int, int) { return s.Width, s.Height }

func (s *SVG) Clear() {
	s.defs.Reset()
	s.body.Reset()
	s.nGrad = 0
}

func (s *SVG) StrokePolyline(pts []r2.Vec, c color.NRGBA, width float64) {
	if len(pts) < 2 {
		return
	}
	s.body.WriteString(`<path fill="none" stroke-linejoin="round" d="M`)
	for i, p := range pts {
		if i == 0 {
			s.body.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
		} else {
			s.body.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
		}
	}
	s.body.WriteString(fmt.Sprintf(`" stroke="%s" stroke-opacity="%.3f" stroke-width="%.1f"/>`+"\n", hex(c), alpha(c), width))
}

func (s *SVG) FillCircle(center r2.Vec, r float64, c color.NRGBA) {
	if r <= 0 {
		return
	}
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s" fill-opacity="%.3f"/>`+"\n",
		center.X, center.Y, r, hex(c), alpha(c)))
}

func (s *SVG) FillRadialGradient(center r2.Vec, r0, r1 float64, inner, outer color.NRGBA) {
	if r1 <= 0 {
		return
	}
	id := fmt.Sprintf("glow%d", s.nGrad)
	s.nGrad++
	s.defs.WriteString(fmt.Sprintf(`<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%.1f" cy="%.1f" r="%.1f">`+"\n",
		id, center.X, center.Y, r1))
	s.defs.WriteString(fmt.Sprintf(`<stop offset="%.3f" stop-color="%s" stop-opacity="%.3f"/>`+"\n", r0/r1, hex(inner), alpha(inner)))
	s.defs.WriteString(fmt.Sprintf(`<stop offset="1" stop-color="%s" stop-opacity="%.3f"/>`+"\n", hex(outer), alpha(outer)))
	s.defs.WriteString("</radialGradient>\n")
	s.body.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="url(#%s)"/>`+"\n", center.X, center.Y, r1, id))
}

func (s *SVG) FillText(text string, at r2.Vec, c color.NRGBA) {
	s.body.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="JetBrains Mono, monospace" font-size="10">%s</text>`+"\n",
		at.X, at.Y, hex(c), html.EscapeString(text)))
}

// String returns the complete document.
func (s *SVG) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, s.Width, s.Height, s.Width, s.Height, hex(s.Background)))
	if s.defs.Len() > 0 {
		sb.WriteString("<defs>\n")
		sb.WriteString(s.defs.String())
		sb.WriteString("</defs>\n")
	}
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>")
	return sb.String()
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func alpha(c color.NRGBA) float64 {
	return float64(c.A) / 255
}
