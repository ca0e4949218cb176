package knot

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"
)

// Snapshot is an immutable list of knots read by one render cycle.
// Every mutation helper returns a new snapshot.
type Snapshot struct {
	knots []Knot
}

func NewSnapshot(knots ...Knot) Snapshot {
	c := make([]Knot, len(knots))
	copy(c, knots)
	return Snapshot{knots: c}
}

func (s Snapshot) Len() int { return len(s.knots) }

func (s Snapshot) At(i int) Knot { return s.knots[i] }

// All returns a copy of the knots.
func (s Snapshot) All() []Knot {
	c := make([]Knot, len(s.knots))
	copy(c, s.knots)
	return c
}

func (s Snapshot) With(k Knot) Snapshot {
	c := make([]Knot, len(s.knots), len(s.knots)+1)
	copy(c, s.knots)
	return Snapshot{knots: append(c, k)}
}

func (s Snapshot) Without(id string) Snapshot {
	c := make([]Knot, 0, len(s.knots))
	for _, k := range s.knots {
		if k.id != id {
			c = append(c, k)
		}
	}
	return Snapshot{knots: c}
}

// Pop drops the most recently added knot.
func (s Snapshot) Pop() Snapshot {
	if len(s.knots) == 0 {
		return s
	}
	return NewSnapshot(s.knots[:len(s.knots)-1]...)
}

// Permute returns the knots reordered by idx, which must be a permutation of 0..Len-1.
func (s Snapshot) Permute(idx []int) Snapshot {
	c := make([]Knot, len(idx))
	for i, j := range idx {
		c[i] = s.knots[j]
	}
	return Snapshot{knots: c}
}

// TotalMass sums knot masses.
func (s Snapshot) TotalMass() float64 {
	sum := 0.0
	for _, k := range s.knots {
		sum += k.mass
	}
	return sum
}

// DefaultScene is the scene the application starts with.
func DefaultScene() Snapshot {
	p1, _ := Default("p1", Proton, r2.Vec{X: 0.3, Y: 0.4})
	p2, _ := Default("p2", Electron, r2.Vec{X: 0.7, Y: 0.6})
	return NewSnapshot(p1, p2)
}

type versioned struct {
	snap    Snapshot
	version uint64
}

// Store is the owner side of the knot list. Readers take a snapshot per
// cycle with Load; writers replace it wholesale.
type Store struct {
	cur atomic.Pointer[versioned]
}

func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.cur.Store(&versioned{snap: initial})
	return s
}

func (s *Store) Load() Snapshot { return s.cur.Load().snap }

func (s *Store) Version() uint64 { return s.cur.Load().version }

func (s *Store) Replace(snap Snapshot) uint64 {
	for {
		old := s.cur.Load()
		next := &versioned{snap: snap, version: old.version + 1}
		if s.cur.CompareAndSwap(old, next) {
			return next.version
		}
	}
}

// Update applies fn to the current snapshot and stores the result.
func (s *Store) Update(fn func(Snapshot) Snapshot) uint64 {
	for {
		old := s.cur.Load()
		next := &versioned{snap: fn(old.snap), version: old.version + 1}
		if s.cur.CompareAndSwap(old, next) {
			return next.version
		}
	}
}

func (s *Store) Append(k Knot) uint64 {
	return s.Update(func(cur Snapshot) Snapshot { return cur.With(k) })
}
