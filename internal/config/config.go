package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/lattice"
	"github.com/san-kum/rqnt/internal/render"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth      = 800
	DefaultHeight     = 500
	DefaultFPS        = 60
	DefaultSize       = 50
	DefaultKVacuum    = 1.0
	DefaultBaseRadius = 5.0
	DefaultAmplitude  = 2.0
	DefaultPeriodMs   = 200.0
	DefaultGlowInner  = 5.0
	DefaultGlowOuter  = 25.0

	MinSize = 20
	MaxSize = 100
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Lattice  LatticeConfig  `yaml:"lattice"`
	Pulse    PulseConfig    `yaml:"pulse"`
	Glow     GlowConfig     `yaml:"glow"`
	FPS      int            `yaml:"fps"`
	Branch   string         `yaml:"branch"`
	Size     int            `yaml:"size"`
	KVacuum  float64        `yaml:"k_vacuum"`
	Seed     int64          `yaml:"seed"`
	Knots    []KnotConfig   `yaml:"knots"`
}

type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LatticeConfig struct {
	Spacing   float64 `yaml:"spacing"`
	Strength  float64 `yaml:"strength"`
	Softening float64 `yaml:"softening"`
	Epsilon   float64 `yaml:"epsilon"`
}

type PulseConfig struct {
	BaseRadius float64 `yaml:"base_radius"`
	Amplitude  float64 `yaml:"amplitude"`
	PeriodMs   float64 `yaml:"period_ms"`
}

type GlowConfig struct {
	Inner float64 `yaml:"inner"`
	Outer float64 `yaml:"outer"`
}

// KnotConfig describes one knot. Mass, torsion and chirality fall back to the
// category defaults when omitted.
type KnotConfig struct {
	ID        string   `yaml:"id"`
	Category  string   `yaml:"category"`
	X         float64  `yaml:"x"`
	Y         float64  `yaml:"y"`
	Mass      *float64 `yaml:"mass,omitempty"`
	Torsion   *float64 `yaml:"torsion,omitempty"`
	Chirality string   `yaml:"chirality,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		Lattice: LatticeConfig{
			Spacing:   lattice.DefaultSpacing,
			Strength:  lattice.DefaultStrength,
			Softening: lattice.DefaultSoftening,
			Epsilon:   lattice.DefaultEpsilon,
		},
		Pulse:   PulseConfig{BaseRadius: DefaultBaseRadius, Amplitude: DefaultAmplitude, PeriodMs: DefaultPeriodMs},
		Glow:    GlowConfig{Inner: DefaultGlowInner, Outer: DefaultGlowOuter},
		FPS:     DefaultFPS,
		Branch:  knot.RQNTC.String(),
		Size:    DefaultSize,
		KVacuum: DefaultKVacuum,
		Knots: []KnotConfig{
			{ID: "p1", Category: "Proton", X: 0.3, Y: 0.4},
			{ID: "p2", Category: "Electron", X: 0.7, Y: 0.6},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Viewport.Width, c.Viewport.Height)
	}
	if err := c.LatticeParams().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	if c.Pulse.PeriodMs <= 0 {
		return fmt.Errorf("%w: pulse period %g", ErrInvalid, c.Pulse.PeriodMs)
	}
	if c.Glow.Outer <= c.Glow.Inner {
		return fmt.Errorf("%w: glow outer %g must exceed inner %g", ErrInvalid, c.Glow.Outer, c.Glow.Inner)
	}
	if c.Size < MinSize || c.Size > MaxSize {
		return fmt.Errorf("%w: size %d outside [%d, %d]", ErrInvalid, c.Size, MinSize, MaxSize)
	}
	if _, err := knot.ParseBranch(c.Branch); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Scene(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) LatticeParams() lattice.Params {
	return lattice.Params{
		Spacing:   c.Lattice.Spacing,
		Strength:  c.Lattice.Strength,
		Softening: c.Lattice.Softening,
		Epsilon:   c.Lattice.Epsilon,
	}
}

func (c *Config) Style() render.Style {
	s := render.DefaultStyle()
	s.BaseRadius = c.Pulse.BaseRadius
	s.Amplitude = c.Pulse.Amplitude
	s.PulsePeriod = c.Pulse.PeriodMs
	s.GlowInner = c.Glow.Inner
	s.GlowOuter = c.Glow.Outer
	return s
}

func (c *Config) Renderer() *render.Renderer {
	return render.New(c.LatticeParams(), c.Style())
}

func (c *Config) BranchValue() knot.Branch {
	b, _ := knot.ParseBranch(c.Branch)
	return b
}

func (c *Config) ViewportValue() lattice.Viewport {
	return lattice.Viewport{Width: float64(c.Viewport.Width), Height: float64(c.Viewport.Height)}
}

// Scene builds the initial snapshot from the knot list.
func (c *Config) Scene() (knot.Snapshot, error) {
	knots := make([]knot.Knot, 0, len(c.Knots))
	for i, kc := range c.Knots {
		cat, err := knot.ParseCategory(kc.Category)
		if err != nil {
			return knot.Snapshot{}, fmt.Errorf("knot %d: %w", i, err)
		}
		prof := cat.Profile()
		mass, torsion, chir := prof.DefaultMass, prof.DefaultTorsion, prof.DefaultChirality
		if kc.Mass != nil {
			mass = *kc.Mass
		}
		if kc.Torsion != nil {
			torsion = *kc.Torsion
		}
		if kc.Chirality != "" {
			if chir, err = knot.ParseChirality(kc.Chirality); err != nil {
				return knot.Snapshot{}, fmt.Errorf("knot %d: %w", i, err)
			}
		}
		id := kc.ID
		if id == "" {
			id = fmt.Sprintf("k%d", i+1)
		}
		k, err := knot.New(id, cat, r2.Vec{X: kc.X, Y: kc.Y}, mass, torsion, chir)
		if err != nil {
			return knot.Snapshot{}, fmt.Errorf("knot %d: %w", i, err)
		}
		knots = append(knots, k)
	}
	return knot.NewSnapshot(knots...), nil
}

// SpacingForSize maps the lattice density slider onto a grid spacing so that
// the default size keeps the default spacing.
func SpacingForSize(size int, base float64) float64 {
	if size < MinSize {
		size = MinSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return base * float64(DefaultSize) / float64(size)
}
