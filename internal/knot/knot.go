package knot

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrUnknownCategory = errors.New("knot: unknown category")
	ErrNegativeMass    = errors.New("knot: mass must be non-negative")
	ErrOutOfPlane      = errors.New("knot: position outside the unit plane")
)

// Category is the closed set of knot kinds.
type Category uint8

const (
	Proton Category = iota
	Electron
	Neutron
)

type Chirality uint8

const (
	Dextro Chirality = iota
	Levo
)

func (c Chirality) String() string {
	if c == Dextro {
		return "Right-Handed"
	}
	return "Left-Handed"
}

// Profile holds everything that used to be decided by comparing category names.
type Profile struct {
	Label            string
	Color            color.NRGBA
	Glow             color.NRGBA
	DefaultMass      float64
	DefaultTorsion   float64
	DefaultChirality Chirality
}

var neutralColor = mustHex("#9ca3af")

var profiles = map[Category]Profile{
	Proton: {
		Label:            "Proton",
		Color:            mustHex("#ef4444"),
		Glow:             color.NRGBA{R: 239, G: 68, B: 68, A: 102},
		DefaultMass:      1.0,
		DefaultTorsion:   1.0,
		DefaultChirality: Dextro,
	},
	Electron: {
		Label:            "Electron",
		Color:            mustHex("#3b82f6"),
		Glow:             color.NRGBA{R: 59, G: 130, B: 246, A: 102},
		DefaultMass:      0.0005,
		DefaultTorsion:   -1.0,
		DefaultChirality: Levo,
	},
	Neutron: {
		Label:            "Neutron",
		Color:            neutralColor,
		Glow:             color.NRGBA{R: 59, G: 130, B: 246, A: 102},
		DefaultMass:      1.001,
		DefaultTorsion:   0,
		DefaultChirality: Levo,
	},
}

func mustHex(s string) color.NRGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Profile returns the draw and default table entry. Unknown categories get a
// gray profile with zero defaults.
func (c Category) Profile() Profile {
	if p, ok := profiles[c]; ok {
		return p
	}
	return Profile{
		Label:            fmt.Sprintf("Category(%d)", uint8(c)),
		Color:            neutralColor,
		Glow:             color.NRGBA{R: 59, G: 130, B: 246, A: 102},
		DefaultChirality: Levo,
	}
}

func (c Category) String() string { return c.Profile().Label }

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := profiles[c]
	return ok
}

func Categories() []Category { return []Category{Proton, Electron, Neutron} }

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "proton", "p", "heavy-positive":
		return Proton, nil
	case "electron", "e", "light-negative":
		return Electron, nil
	case "neutron", "n", "neutral":
		return Neutron, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func ParseChirality(s string) (Chirality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right-handed", "dextro", "right":
		return Dextro, nil
	case "left-handed", "levo", "left":
		return Levo, nil
	}
	return 0, fmt.Errorf("knot: unknown chirality %q", s)
}

// Knot is a point-mass. Fields are unexported so a knot cannot change once built.
type Knot struct {
	id        string
	category  Category
	position  r2.Vec
	mass      float64
	torsion   float64
	chirality Chirality
}

func New(id string, cat Category, pos r2.Vec, mass, torsion float64, ch Chirality) (Knot, error) {
	if !cat.Valid() {
		return Knot{}, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(cat))
	}
	// written so NaN fails both checks
	if !(mass >= 0) {
		return Knot{}, fmt.Errorf("%w: %g", ErrNegativeMass, mass)
	}
	if !(pos.X >= 0 && pos.X <= 1 && pos.Y >= 0 && pos.Y <= 1) {
		return Knot{}, fmt.Errorf("%w: (%g, %g)", ErrOutOfPlane, pos.X, pos.Y)
	}
	return Knot{id: id, category: cat, position: pos, mass: mass, torsion: torsion, chirality: ch}, nil
}

// Default builds a knot with the category's default mass, torsion and chirality.
func Default(id string, cat Category, pos r2.Vec) (Knot, error) {
	p := cat.Profile()
	return New(id, cat, pos, p.DefaultMass, p.DefaultTorsion, p.DefaultChirality)
}

func (k Knot) ID() string           { return k.id }
func (k Knot) Category() Category   { return k.category }
func (k Knot) Position() r2.Vec     { return k.position }
func (k Knot) Mass() float64        { return k.mass }
func (k Knot) Torsion() float64     { return k.torsion }
func (k Knot) Chirality() Chirality { return k.chirality }

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a 9 character base36 identifier.
func NewID(rng *rand.Rand) string {
	var b [9]byte
	for i := range b {
		b[i] = idAlphabet[rng.Intn(len(idAlphabet))]
	}
	return string(b[:])
}

// Inject creates a knot the way the laboratory controls do: fresh id, a random
// position inside [0.1, 0.9]^2 and the category defaults.
func Inject(cat Category, rng *rand.Rand) Knot {
	pos := r2.Vec{X: rng.Float64()*0.8 + 0.1, Y: rng.Float64()*0.8 + 0.1}
	k, _ := Default(NewID(rng), cat, pos)
	return k
}
