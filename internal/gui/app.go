package gui

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/rqnt/internal/config"
	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/loop"
	"github.com/san-kum/rqnt/internal/render"
)

var (
	ColBg      = rl.NewColor(8, 8, 8, 255)
	ColText    = rl.NewColor(200, 200, 200, 255)
	ColTextDim = rl.NewColor(90, 90, 90, 255)
	ColBadge   = rl.NewColor(100, 150, 255, 255)
)

type sceneKey struct {
	version uint64
	size    int
	branch  knot.Branch
	w, h    int
}

// App is the windowed lattice laboratory. All methods run on the window's
// thread.
type App struct {
	cfg    *config.Config
	store  *knot.Store
	sup    loop.Supervisor[sceneKey]
	clock  *loop.ManualClock
	logger *log.Logger
	rng    *rand.Rand

	size    int
	branch  knot.Branch
	running bool
}

func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &App{
		cfg:     cfg,
		store:   knot.NewStore(scene),
		clock:   loop.NewManualClock(time.Now()),
		logger:  logger,
		rng:     rand.New(rand.NewSource(seed)),
		size:    cfg.Size,
		branch:  cfg.BranchValue(),
		running: true,
	}, nil
}

// Run opens the window and blocks until it is closed.
func Run(cfg *config.Config, logger *log.Logger) error {
	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Viewport.Width), int32(cfg.Viewport.Height), "rqnt")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.FPS))

	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	defer a.sup.Stop()
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) key() sceneKey {
	return sceneKey{
		version: a.store.Version(),
		size:    a.size,
		branch:  a.branch,
		w:       rl.GetScreenWidth(),
		h:       rl.GetScreenHeight(),
	}
}

func (a *App) renderer() *render.Renderer {
	p := a.cfg.LatticeParams()
	p.Spacing = config.SpacingForSize(a.size, p.Spacing)
	return render.New(p, a.cfg.Style())
}

func (a *App) start(gen uint64) *loop.Loop {
	r, store := a.renderer(), a.store
	return loop.Attach(
		func() (Surface, error) {
			if !rl.IsWindowReady() {
				return Surface{}, render.ErrNoSurface
			}
			return Surface{Background: ColBg}, nil
		},
		func(s Surface, now time.Time) error {
			return r.Draw(s, store.Load(), now)
		},
		loop.WithGeneration(gen),
		loop.WithClock(a.clock),
		loop.WithLogger(a.logger),
	)
}

// Update applies input and reports whether the window should stay open.
func (a *App) Update() bool {
	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return false
	case rl.IsKeyPressed(rl.KeyP):
		a.store.Append(knot.Inject(knot.Proton, a.rng))
	case rl.IsKeyPressed(rl.KeyE):
		a.store.Append(knot.Inject(knot.Electron, a.rng))
	case rl.IsKeyPressed(rl.KeyN):
		a.store.Append(knot.Inject(knot.Neutron, a.rng))
	case rl.IsKeyPressed(rl.KeyX):
		a.store.Update(knot.Snapshot.Pop)
	case rl.IsKeyPressed(rl.KeyC):
		a.store.Replace(knot.NewSnapshot())
	case rl.IsKeyPressed(rl.KeyR):
		scene, _ := a.cfg.Scene()
		a.store.Replace(scene)
	case rl.IsKeyPressed(rl.KeyB):
		a.branch = a.branch.Toggle()
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		a.size = min(a.size+5, config.MaxSize)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		a.size = max(a.size-5, config.MinSize)
	case rl.IsKeyPressed(rl.KeySpace):
		a.running = !a.running
	}
	a.sup.Sync(a.key(), a.start)
	return true
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	cur := a.sup.Current()
	if cur == nil {
		rl.ClearBackground(ColBg)
		rl.DrawText("drawing surface unavailable", 30, 30, 16, ColTextDim)
		return
	}
	// a paused clock keeps the pulse frozen
	if a.running {
		a.clock.Set(time.Now())
	}
	cur.Tick()
	a.drawHUD(cur)
}

func (a *App) drawHUD(cur *loop.Loop) {
	badge := "SIMULATION ACTIVE: " + a.branch.String()
	w := rl.MeasureText(badge, 14)
	rl.DrawRectangle(16, 16, w+16, 24, ColBadge)
	rl.DrawText(badge, 24, 21, 14, ColBg)

	snap := a.store.Load()
	y := int32(52)
	for i := 0; i < snap.Len() && i < 12; i++ {
		k := snap.At(i)
		prof := k.Category().Profile()
		rl.DrawCircle(26, y+6, 4, toColor(prof.Color))
		rl.DrawText(fmt.Sprintf("%-8s %s  %.4f eV  %s", prof.Label, k.ID(), k.Mass(), k.Chirality()), 36, y, 12, ColText)
		y += 18
	}

	status := cur.State().String()
	if !a.running {
		status = "PAUSED"
	}
	h := int32(rl.GetScreenHeight())
	rl.DrawText(fmt.Sprintf("%s  frames %d  failures %d  density %d  %d FPS",
		status, cur.Frames(), cur.Failures(), a.size, rl.GetFPS()), 16, h-48, 12, ColTextDim)
	rl.DrawText("[P/E/N] INJECT  [X] POP  [C] CLEAR  [R] RESET  [B] BRANCH  [+/-] DENSITY  [SPACE] PAUSE  [Q] QUIT",
		16, h-28, 12, ColTextDim)
}
