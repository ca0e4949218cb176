package export

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"log"
	"time"

	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/loop"
	"github.com/san-kum/rqnt/internal/render"
)

var ErrNoFrames = errors.New("export: no frames recorded")

// Recording describes an offline capture of the pulse animation.
type Recording struct {
	Width, Height int
	Frames        int
	Step          time.Duration
	Start         time.Time
	Logger        *log.Logger
}

// RecordGIF drives the render loop for rec.Frames cycles on a raster surface,
// without waiting on real time, and encodes the result as an animated GIF.
// Frames that fail to draw are skipped.
func RecordGIF(w io.Writer, r *render.Renderer, snap knot.Snapshot, rec Recording) error {
	if rec.Frames <= 0 {
		return ErrNoFrames
	}
	surf := NewRaster(rec.Width, rec.Height)
	clock := loop.NewManualClock(rec.Start)

	var frames []*image.Paletted
	opts := []loop.Option{loop.WithClock(clock)}
	if rec.Logger != nil {
		opts = append(opts, loop.WithLogger(rec.Logger))
	}
	l := loop.New(func(now time.Time) error {
		if err := r.Draw(surf, snap, now); err != nil {
			return err
		}
		frames = append(frames, paletted(surf.Image()))
		return nil
	}, opts...)
	l.RunN(rec.Frames, clock, rec.Step)
	l.Stop()

	if len(frames) == 0 {
		if err := l.LastError(); err != nil {
			return errors.Join(ErrNoFrames, err)
		}
		return ErrNoFrames
	}

	delay := int(rec.Step / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}

func paletted(src *image.RGBA) *image.Paletted {
	dst := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, src.Bounds(), src, image.Point{})
	return dst
}
