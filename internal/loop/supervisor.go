package loop

// Supervisor keeps at most one loop alive per key. When the key changes the
// old loop is stopped and exactly one new loop is started.
//
// A Supervisor is NOT safe for concurrent use; it belongs to the host's
// update goroutine.
type Supervisor[K comparable] struct {
	key      K
	has      bool
	cur      *Loop
	gen      uint64
	restarts int
}

// Sync starts a loop for key unless the current loop already serves it.
// start may return nil when the loop cannot start; Sync will not retry until
// the key changes. It reports whether a restart happened.
func (s *Supervisor[K]) Sync(key K, start func(gen uint64) *Loop) (*Loop, bool) {
	if s.has && s.key == key {
		return s.cur, false
	}
	if s.cur != nil {
		s.cur.Stop()
	}
	s.gen++
	s.key, s.has = key, true
	s.cur = start(s.gen)
	s.restarts++
	return s.cur, true
}

func (s *Supervisor[K]) Current() *Loop { return s.cur }

func (s *Supervisor[K]) Generation() uint64 { return s.gen }

// Restarts counts how many loops Sync has started.
func (s *Supervisor[K]) Restarts() int { return s.restarts }

// Accept reports whether a tick scheduled for generation gen should run.
func (s *Supervisor[K]) Accept(gen uint64) bool {
	return s.cur != nil && gen == s.gen && s.cur.State() == Running
}

// Stop tears down the current loop. The next Sync always starts a new one.
func (s *Supervisor[K]) Stop() {
	if s.cur != nil {
		s.cur.Stop()
	}
	s.cur = nil
	s.has = false
}
