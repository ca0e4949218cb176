package loop

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "STOPPED"
}

// Cycle is one unit of work, usually a full frame.
type Cycle func(now time.Time) error

// Loop repeats a cycle until it is stopped. Cycles never overlap: either the
// host calls Tick from its own refresh callback, or Run calls it from a ticker.
type Loop struct {
	cycle  Cycle
	clock  Clock
	logger *log.Logger
	gen    uint64

	// mu orders the Running check at the start of a cycle against Stop.
	// It is not held while the cycle runs.
	mu sync.Mutex

	state    atomic.Int32
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	frames   atomic.Uint64
	failures atomic.Uint64
	lastErr  atomic.Pointer[FrameError]
}

type Option func(*Loop)

func WithClock(c Clock) Option { return func(l *Loop) { l.clock = c } }

func WithLogger(lg *log.Logger) Option { return func(l *Loop) { l.logger = lg } }

// WithGeneration tags the loop so hosts can discard ticks scheduled for an
// older loop.
func WithGeneration(g uint64) Option { return func(l *Loop) { l.gen = g } }

// New returns a loop in the Running state.
func New(cycle Cycle, opts ...Option) *Loop {
	l := &Loop{
		cycle:  cycle,
		clock:  SystemClock{},
		logger: log.Default(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	if l.clock == nil {
		l.clock = SystemClock{}
	}
	l.state.Store(int32(Running))
	return l
}

func (l *Loop) State() State { return State(l.state.Load()) }

func (l *Loop) Generation() uint64 { return l.gen }

// Frames counts cycles that were started.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Failures counts cycles that returned an error or panicked.
func (l *Loop) Failures() uint64 { return l.failures.Load() }

// LastError is the most recent cycle failure, or nil.
func (l *Loop) LastError() error {
	if fe := l.lastErr.Load(); fe != nil {
		return fe
	}
	return nil
}

// Tick runs one cycle if the loop is still running and reports whether the
// loop is running afterwards. It may be called from any goroutine, but
// callers must not overlap Ticks.
func (l *Loop) Tick() bool {
	l.mu.Lock()
	if l.State() != Running {
		l.mu.Unlock()
		return false
	}
	n := l.frames.Add(1)
	l.mu.Unlock()

	l.runCycle(n)
	return l.State() == Running
}

func (l *Loop) runCycle(n uint64) {
	if err := l.safeCycle(l.clock.Now()); err != nil {
		fe := &FrameError{Frame: n, Wrapped: err}
		l.failures.Add(1)
		l.lastErr.Store(fe)
		l.logger.Printf("%v", fe)
	}
}

func (l *Loop) safeCycle(now time.Time) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, rec)
		}
	}()
	return l.cycle(now)
}

// Stop moves the loop to Stopped. It is safe to call more than once and from
// inside a cycle; no cycle starts after it returns.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.state.Store(int32(Stopped))
		l.mu.Unlock()
		close(l.stop)
	})
}

// Stopping is closed once Stop has been called.
func (l *Loop) Stopping() <-chan struct{} { return l.stop }

// Done is closed when Run returns. It never closes if Run was not called.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run drives Tick every interval until ctx is canceled or Stop is called.
// The first cycle runs immediately.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)
	if interval <= 0 {
		l.Stop()
		return fmt.Errorf("%w: %v", ErrBadInterval, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !l.Tick() {
			return nil
		}
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// RunN drives exactly n cycles without waiting on real time, advancing clock
// by step before each cycle after the first. It stops early if the loop stops.
func (l *Loop) RunN(n int, clock *ManualClock, step time.Duration) int {
	ran := 0
	for i := 0; i < n; i++ {
		if i > 0 && clock != nil {
			clock.Advance(step)
		}
		if l.State() != Running {
			break
		}
		l.Tick()
		ran++
	}
	return ran
}

// Attach acquires a drawing target and starts a loop that draws into it. When
// the target cannot be acquired the loop is not started: the error is logged
// and nil is returned.
func Attach[S any](acquire func() (S, error), draw func(S, time.Time) error, opts ...Option) *Loop {
	l := New(nil, opts...)
	target, err := acquire()
	if err != nil {
		l.logger.Printf("loop: not starting, surface unavailable: %v", err)
		l.Stop()
		return nil
	}
	l.cycle = func(now time.Time) error { return draw(target, now) }
	return l
}
