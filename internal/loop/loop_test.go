package loop_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"log"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/loop"
	"github.com/san-kum/rqnt/internal/render"
)

// countingSurface counts every drawing call it receives.
type countingSurface struct {
	calls  atomic.Int64
	onDraw func()
}

func (s *countingSurface) hit() {
	s.calls.Add(1)
	if s.onDraw != nil {
		s.onDraw()
	}
}

func (s *countingSurface) Size() (int, int)                              { return 120, 90 }
func (s *countingSurface) Clear()                                        { s.hit() }
func (s *countingSurface) StrokePolyline([]r2.Vec, color.NRGBA, float64) { s.hit() }
func (s *countingSurface) FillCircle(r2.Vec, float64, color.NRGBA)       { s.hit() }
func (s *countingSurface) FillText(string, r2.Vec, color.NRGBA)          { s.hit() }

func (s *countingSurface) FillRadialGradient(r2.Vec, float64, float64, color.NRGBA, color.NRGBA) {
	s.hit()
}

var quiet = loop.WithLogger(log.New(io.Discard, "", 0))

var _ = Describe("Loop", func() {
	var (
		clock *loop.ManualClock
		seen  []time.Time
		l     *loop.Loop
	)

	BeforeEach(func() {
		clock = loop.NewManualClock(time.UnixMilli(0))
		seen = nil
		l = loop.New(func(now time.Time) error {
			seen = append(seen, now)
			return nil
		}, loop.WithClock(clock), quiet)
	})

	It("starts running", func() {
		Expect(l.State()).To(Equal(loop.Running))
		Expect(l.State().String()).To(Equal("RUNNING"))
	})

	It("runs one cycle per tick with the clock's time", func() {
		Expect(l.Tick()).To(BeTrue())
		clock.Advance(16 * time.Millisecond)
		Expect(l.Tick()).To(BeTrue())
		Expect(seen).To(HaveLen(2))
		Expect(seen[1].Sub(seen[0])).To(Equal(16 * time.Millisecond))
		Expect(l.Frames()).To(BeEquivalentTo(2))
	})

	It("runs N cycles without real time passing", func() {
		Expect(l.RunN(10, clock, time.Second)).To(Equal(10))
		Expect(seen).To(HaveLen(10))
		Expect(seen[9]).To(Equal(time.UnixMilli(9000)))
	})

	It("never runs a cycle after Stop", func() {
		l.Tick()
		l.Stop()
		Expect(l.State()).To(Equal(loop.Stopped))
		Expect(l.Tick()).To(BeFalse())
		Expect(l.RunN(5, clock, time.Millisecond)).To(Equal(0))
		Expect(seen).To(HaveLen(1))
	})

	It("tolerates repeated Stop calls", func() {
		Expect(func() {
			l.Stop()
			l.Stop()
			l.Stop()
		}).NotTo(Panic())
		Eventually(l.Stopping()).Should(BeClosed())
	})

	It("starts no cycle once Stop returns from another goroutine", func() {
		for i := 0; i < 50; i++ {
			var calls atomic.Int64
			ticker := loop.New(func(time.Time) error {
				calls.Add(1)
				return nil
			}, quiet)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for ticker.Tick() {
				}
			}()
			Eventually(ticker.Frames).Should(BeNumerically(">", 0))
			ticker.Stop()
			frames := ticker.Frames()
			<-done
			Expect(ticker.Frames()).To(Equal(frames))
			Expect(calls.Load()).To(BeEquivalentTo(frames))
		}
	})

	It("stops from inside a cycle", func() {
		var stopper *loop.Loop
		stopper = loop.New(func(time.Time) error {
			stopper.Stop()
			return nil
		}, quiet)
		Expect(stopper.Tick()).To(BeFalse())
		Expect(stopper.Tick()).To(BeFalse())
		Expect(stopper.Frames()).To(BeEquivalentTo(1))
	})

	Context("when a cycle fails", func() {
		It("logs, counts and keeps going", func() {
			var buf bytes.Buffer
			n := 0
			failing := loop.New(func(time.Time) error {
				n++
				switch n {
				case 1:
					return errors.New("bad frame")
				case 2:
					panic("surface exploded")
				}
				return nil
			}, loop.WithLogger(log.New(&buf, "", 0)))

			Expect(failing.RunN(3, nil, 0)).To(Equal(3))
			Expect(failing.State()).To(Equal(loop.Running))
			Expect(failing.Failures()).To(BeEquivalentTo(2))
			Expect(buf.String()).To(ContainSubstring("frame 1: bad frame"))
			Expect(buf.String()).To(ContainSubstring("surface exploded"))

			var fe *loop.FrameError
			Expect(errors.As(failing.LastError(), &fe)).To(BeTrue())
			Expect(fe.Frame).To(BeEquivalentTo(2))
			Expect(errors.Is(failing.LastError(), loop.ErrPanic)).To(BeTrue())
		})
	})

	Context("Run", func() {
		It("ticks until Stop and then closes Done", func() {
			var ticks atomic.Int64
			r := loop.New(func(time.Time) error {
				ticks.Add(1)
				return nil
			}, quiet)
			go r.Run(context.Background(), time.Millisecond)

			Eventually(ticks.Load).Should(BeNumerically(">=", 3))
			r.Stop()
			Eventually(r.Done()).Should(BeClosed())

			after := ticks.Load()
			Consistently(ticks.Load, 30*time.Millisecond).Should(Equal(after))
		})

		It("returns the context error on cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			r := loop.New(func(time.Time) error { return nil }, quiet)
			errc := make(chan error, 1)
			go func() { errc <- r.Run(ctx, time.Millisecond) }()
			cancel()
			Eventually(errc).Should(Receive(MatchError(context.Canceled)))
			Expect(r.State()).To(Equal(loop.Stopped))
		})

		It("refuses a second Run and a bad interval", func() {
			r := loop.New(func(time.Time) error { return nil }, quiet)
			Expect(r.Run(context.Background(), 0)).To(MatchError(loop.ErrBadInterval))
			Expect(r.Run(context.Background(), time.Millisecond)).To(MatchError(loop.ErrAlreadyRunning))
		})
	})

	Context("Attach", func() {
		It("does not start when the surface is unavailable", func() {
			var buf bytes.Buffer
			drawn := false
			got := loop.Attach(func() (*countingSurface, error) {
				return nil, errors.New("no canvas")
			}, func(*countingSurface, time.Time) error {
				drawn = true
				return nil
			}, loop.WithLogger(log.New(&buf, "", 0)))

			Expect(got).To(BeNil())
			Expect(drawn).To(BeFalse())
			Expect(buf.String()).To(ContainSubstring("no canvas"))
		})
	})
})

var _ = Describe("Teardown mid-flight", func() {
	It("issues no drawing call after Stop", func() {
		surf := &countingSurface{}
		r := render.Default()
		scene := knot.DefaultScene()
		clock := loop.NewManualClock(time.UnixMilli(0))

		var l *loop.Loop
		frames := 0
		l = loop.Attach(func() (*countingSurface, error) { return surf, nil },
			func(s *countingSurface, now time.Time) error {
				frames++
				return r.Draw(s, scene, now)
			}, loop.WithClock(clock), quiet)
		Expect(l).NotTo(BeNil())

		l.RunN(3, clock, 16*time.Millisecond)
		Expect(surf.calls.Load()).To(BeNumerically(">", 0))

		l.Stop()
		atStop := surf.calls.Load()
		l.RunN(5, clock, 16*time.Millisecond)
		l.Tick()
		Expect(surf.calls.Load()).To(Equal(atStop))
		Expect(frames).To(Equal(3))
	})

	It("stops a running loop from a draw call without further draws", func() {
		surf := &countingSurface{}
		r := render.Default()
		var l *loop.Loop
		surf.onDraw = func() {
			if surf.calls.Load() == 10 {
				l.Stop()
			}
		}
		l = loop.New(func(now time.Time) error {
			return r.Draw(surf, knot.DefaultScene(), now)
		}, quiet)

		go l.Run(context.Background(), time.Millisecond)
		Eventually(l.Done()).Should(BeClosed())

		// the in-flight frame finishes, then nothing more
		final := surf.calls.Load()
		Consistently(surf.calls.Load, 30*time.Millisecond).Should(Equal(final))
	})
})

var _ = Describe("Supervisor", func() {
	type key struct {
		version uint64
		size    int
	}

	var (
		sup    loop.Supervisor[key]
		starts int
		start  func(gen uint64) *loop.Loop
	)

	BeforeEach(func() {
		sup = loop.Supervisor[key]{}
		starts = 0
		start = func(gen uint64) *loop.Loop {
			starts++
			return loop.New(func(time.Time) error { return nil }, loop.WithGeneration(gen), quiet)
		}
	})

	It("starts exactly once per key change", func() {
		first, restarted := sup.Sync(key{1, 50}, start)
		Expect(restarted).To(BeTrue())

		same, restarted := sup.Sync(key{1, 50}, start)
		Expect(restarted).To(BeFalse())
		Expect(same).To(BeIdenticalTo(first))

		second, restarted := sup.Sync(key{2, 50}, start)
		Expect(restarted).To(BeTrue())
		Expect(first.State()).To(Equal(loop.Stopped))
		Expect(second.State()).To(Equal(loop.Running))
		Expect(starts).To(Equal(2))
		Expect(sup.Restarts()).To(Equal(2))
	})

	It("rejects ticks from older generations", func() {
		old, _ := sup.Sync(key{1, 50}, start)
		oldGen := old.Generation()
		sup.Sync(key{1, 60}, start)

		Expect(sup.Accept(oldGen)).To(BeFalse())
		Expect(sup.Accept(sup.Generation())).To(BeTrue())
	})

	It("does not retry a failed start until the key changes", func() {
		failing := func(uint64) *loop.Loop { starts++; return nil }
		cur, _ := sup.Sync(key{1, 50}, failing)
		Expect(cur).To(BeNil())
		sup.Sync(key{1, 50}, failing)
		Expect(starts).To(Equal(1))
		Expect(sup.Accept(sup.Generation())).To(BeFalse())
	})

	It("tears down on Stop", func() {
		cur, _ := sup.Sync(key{1, 50}, start)
		sup.Stop()
		sup.Stop()
		Expect(cur.State()).To(Equal(loop.Stopped))
		Expect(sup.Current()).To(BeNil())

		_, restarted := sup.Sync(key{1, 50}, start)
		Expect(restarted).To(BeTrue())
	})
})
