package viz

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rqnt/internal/config"
	"github.com/san-kum/rqnt/internal/export"
	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/lattice"
	"github.com/san-kum/rqnt/internal/loop"
	"github.com/san-kum/rqnt/internal/render"
)

const (
	sidebarWidth   = 46
	profileSamples = 40
	historyLimit   = 120
	maxListed      = 8
	sizeStep       = 5
	gridAlpha      = 38
	recordFrames   = 90
)

type tickMsg struct {
	gen uint64
	at  time.Time
}

type recordedMsg struct {
	path string
	err  error
}

// sceneKey is everything a running loop was built from. A change restarts it.
type sceneKey struct {
	version    uint64
	size       int
	branch     knot.Branch
	theme      string
	cols, rows int
}

// stats is written by the running cycle and read by View.
type stats struct {
	peak    float64
	profile []float64
	history []float64
}

func (s *stats) observe(mesh lattice.Mesh, vp lattice.Viewport, snap knot.Snapshot, p lattice.Params) {
	s.peak = mesh.Peak(p.Spacing)
	s.profile = lattice.Profile(vp.Height/2, profileSamples, vp, snap, p)
	s.history = append(s.history, s.peak)
	if len(s.history) > historyLimit {
		s.history = s.history[1:]
	}
}

// App is the interactive lattice laboratory.
type App struct {
	cfg    *config.Config
	store  *knot.Store
	canvas *Canvas
	clock  *loop.ManualClock
	sup    *loop.Supervisor[sceneKey]
	stats  *stats
	logger *log.Logger
	rng    *rand.Rand

	keys  keyMap
	help  help.Model
	gauge progress.Model

	spring           harmonica.Spring
	peakPos, peakVel float64

	size          int
	branch        knot.Branch
	theme         Theme
	paused        bool
	frame         int
	width, height int
	status        string
}

func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gauge := progress.New(
		progress.WithScaledGradient("#3b82f6", "#ef4444"),
		progress.WithoutPercentage(),
	)
	gauge.Width = sidebarWidth - 6

	a := &App{
		cfg:    cfg,
		store:  knot.NewStore(scene),
		clock:  loop.NewManualClock(time.Now()),
		sup:    &loop.Supervisor[sceneKey]{},
		stats:  &stats{},
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
		keys:   defaultKeys(),
		help:   help.New(),
		gauge:  gauge,
		spring: harmonica.NewSpring(harmonica.FPS(cfg.FPS), 6.0, 0.8),
		size:   cfg.Size,
		branch: cfg.BranchValue(),
		theme:  ThemeLattice,
		width:  120,
		height: 32,
	}
	a.resize()
	return a, nil
}

// Store exposes the knot list so callers can seed or inspect it.
func (a *App) Store() *knot.Store { return a.store }

func (a App) Init() tea.Cmd {
	return a.sync()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.resize()
		return a, a.sync()
	case tickMsg:
		if !a.sup.Accept(msg.gen) {
			return a, nil
		}
		a.frame++
		if !a.paused {
			a.clock.Set(msg.at)
			a.sup.Current().Tick()
			a.peakPos, a.peakVel = a.spring.Update(a.peakPos, a.peakVel, a.stats.peak)
		}
		return a, a.tick(msg.gen)
	case recordedMsg:
		if msg.err != nil {
			a.status = "record failed: " + msg.err.Error()
			a.logger.Printf("viz: record: %v", msg.err)
		} else {
			a.status = "saved " + msg.path
		}
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.sup.Stop()
		return a, tea.Quit
	case key.Matches(msg, a.keys.Proton):
		a.inject(knot.Proton)
	case key.Matches(msg, a.keys.Electron):
		a.inject(knot.Electron)
	case key.Matches(msg, a.keys.Neutron):
		a.inject(knot.Neutron)
	case key.Matches(msg, a.keys.Pop):
		a.store.Update(knot.Snapshot.Pop)
		a.status = "removed last knot"
	case key.Matches(msg, a.keys.Clear):
		a.store.Replace(knot.NewSnapshot())
		a.status = "cleared"
	case key.Matches(msg, a.keys.Reset):
		scene, _ := a.cfg.Scene()
		a.store.Replace(scene)
		a.size, a.branch = a.cfg.Size, a.cfg.BranchValue()
		a.status = "reset"
	case key.Matches(msg, a.keys.Branch):
		a.branch = a.branch.Toggle()
	case key.Matches(msg, a.keys.Denser):
		a.size = min(a.size+sizeStep, config.MaxSize)
	case key.Matches(msg, a.keys.Sparser):
		a.size = max(a.size-sizeStep, config.MinSize)
	case key.Matches(msg, a.keys.Theme):
		a.theme = NextTheme(a.theme.Name)
	case key.Matches(msg, a.keys.Pause):
		a.paused = !a.paused
	case key.Matches(msg, a.keys.Record):
		a.status = "recording..."
		return a, a.record()
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.resize()
	}
	return a, a.sync()
}

func (a *App) inject(cat knot.Category) {
	k := knot.Inject(cat, a.rng)
	a.store.Append(k)
	a.status = fmt.Sprintf("injected %s %s", cat, k.ID())
}

func (a *App) resize() {
	cols := a.width - sidebarWidth - 4
	rows := a.height - 4
	if a.help.ShowAll {
		rows -= 4
	}
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := NewCanvas(cols, rows)
	if cols > 0 {
		c.Scale = float64(a.cfg.Viewport.Width) / float64(cols*2)
	}
	a.canvas = c
}

func (a *App) key() sceneKey {
	return sceneKey{
		version: a.store.Version(),
		size:    a.size,
		branch:  a.branch,
		theme:   a.theme.Name,
		cols:    a.canvas.Width,
		rows:    a.canvas.Height,
	}
}

// renderer builds the renderer for the current density and theme.
func (a *App) renderer() *render.Renderer {
	p := a.cfg.LatticeParams()
	p.Spacing = config.SpacingForSize(a.size, p.Spacing)
	st := a.cfg.Style()
	st.GridColor = a.theme.GridColor(gridAlpha)
	return render.New(p, st)
}

func (a *App) start(gen uint64) *loop.Loop {
	r := a.renderer()
	st, store, canvas := a.stats, a.store, a.canvas
	return loop.Attach(
		func() (*Canvas, error) {
			if canvas.Width <= 0 || canvas.Height <= 0 {
				return nil, render.ErrNoSurface
			}
			return canvas, nil
		},
		func(c *Canvas, now time.Time) error {
			snap := store.Load()
			mesh, err := r.DrawMesh(c, snap, now)
			if err != nil {
				return err
			}
			w, h := c.Size()
			st.observe(mesh, lattice.Viewport{Width: float64(w), Height: float64(h)}, snap, r.Params)
			return nil
		},
		loop.WithGeneration(gen),
		loop.WithClock(a.clock),
		loop.WithLogger(a.logger),
	)
}

// sync restarts the loop when the scene key changed. A new loop draws at
// once and gets its own tick chain; ticks of the old chain are dropped.
func (a *App) sync() tea.Cmd {
	l, restarted := a.sup.Sync(a.key(), a.start)
	if !restarted || l == nil {
		return nil
	}
	l.Tick()
	return a.tick(l.Generation())
}

func (a *App) tick(gen uint64) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(a.cfg.FPS), func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (a *App) record() tea.Cmd {
	r := a.renderer()
	snap := a.store.Load()
	rec := export.Recording{
		Width:  a.cfg.Viewport.Width,
		Height: a.cfg.Viewport.Height,
		Frames: recordFrames,
		Step:   time.Second / time.Duration(a.cfg.FPS),
		Start:  a.clock.Now(),
		Logger: a.logger,
	}
	path := fmt.Sprintf("rqnt_%d.gif", time.Now().Unix())
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return recordedMsg{err: err}
		}
		defer f.Close()
		if err := export.RecordGIF(f, r, snap, rec); err != nil {
			return recordedMsg{err: err}
		}
		return recordedMsg{path: path}
	}
}

func (a App) View() string {
	canvasView := canvasStyle.Render(a.canvas.Render())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, sidebarStyle.Render(a.sidebar()))
	return main + "\n" + a.help.View(a.keys)
}

func (a App) sidebar() string {
	var s strings.Builder
	s.WriteString(GradientText("R-QNT LATTICE LAB", a.theme.Primary, a.theme.Secondary) + "\n\n")
	s.WriteString(badge("SIMULATION ACTIVE: "+a.branch.String(), a.theme) + "\n\n")

	cur := a.sup.Current()
	switch {
	case cur == nil:
		s.WriteString(StatusPaused.Render("NO SURFACE") + "\n")
	case a.paused:
		s.WriteString(StatusPaused.Render("⏸ PAUSED") + "\n")
	default:
		s.WriteString(StatusRunning.Render(AnimatedSpinner(a.frame)+" "+cur.State().String()) + "\n")
	}
	s.WriteString(Separator(sidebarWidth-4) + "\n")

	snap := a.store.Load()
	s.WriteString(fmt.Sprintf("ENTITIES (%d)\n", snap.Len()))
	if snap.Len() == 0 {
		s.WriteString(Subtle.Render("  (vacuum)") + "\n")
	}
	for i := 0; i < snap.Len() && i < maxListed; i++ {
		s.WriteString(entityLine(snap.At(i)) + "\n")
	}
	if snap.Len() > maxListed {
		s.WriteString(Subtle.Render(fmt.Sprintf("  +%d more", snap.Len()-maxListed)) + "\n")
	}
	s.WriteString(Separator(sidebarWidth-4) + "\n")

	s.WriteString(MetricLabel.Render("Density") + MetricValue.Render(fmt.Sprintf("%d", a.size)) + "\n")
	s.WriteString(MetricLabel.Render("Σ mass") + MetricValue.Render(fmt.Sprintf("%.4f eV", snap.TotalMass())) + "\n")
	s.WriteString(MetricLabel.Render("K_vac") + MetricValue.Render(fmt.Sprintf("%.3f", a.cfg.KVacuum)) + "\n")
	if cur != nil {
		s.WriteString(MetricLabel.Render("Frames") + MetricValue.Render(fmt.Sprintf("%d", cur.Frames())) + "\n")
		s.WriteString(MetricLabel.Render("Failures") + MetricValue.Render(fmt.Sprintf("%d", cur.Failures())) + "\n")
	}
	s.WriteString(MetricLabel.Render("Restarts") + MetricValue.Render(fmt.Sprintf("%d", a.sup.Restarts())) + "\n\n")

	spacing := config.SpacingForSize(a.size, a.cfg.Lattice.Spacing)
	s.WriteString(MetricLabel.Render("Peak |Δ|") + MetricValue.Render(fmt.Sprintf("%.2f px", a.peakPos)) + "\n")
	s.WriteString(a.gauge.ViewAs(clamp01(a.peakPos/spacing)) + "\n")
	s.WriteString(SparklineChart(a.stats.history, sidebarWidth-6) + "\n")

	if len(a.stats.profile) > 1 {
		chart := asciigraph.Plot(a.stats.profile,
			asciigraph.Height(4),
			asciigraph.Width(sidebarWidth-14),
			asciigraph.Caption("|Δ| along the midline"))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}
	if a.status != "" {
		s.WriteString("\n" + Subtle.Render(a.status) + "\n")
	}
	return s.String()
}

func entityLine(k knot.Knot) string {
	prof := k.Category().Profile()
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", prof.Color.R, prof.Color.G, prof.Color.B))).Render("●")
	return fmt.Sprintf(" %s %-8s %-9s %10.4f eV %s",
		dot, prof.Label, k.ID(), k.Mass(), Subtle.Render(chiralityMark(k.Chirality())))
}

func chiralityMark(c knot.Chirality) string {
	if c == knot.Dextro {
		return "R"
	}
	return "L"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Run starts the full-screen laboratory.
func Run(cfg *config.Config, logger *log.Logger) error {
	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(*app, tea.WithAltScreen()).Run()
	return err
}
