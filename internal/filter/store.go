package filter

import "sync"

// Store is the single source of truth for the active Criteria. Every
// Dispatch replaces the held value with the reducer output and notifies the
// listener with it.
type Store struct {
	mu       sync.Mutex
	current  Criteria
	onChange func(Criteria)
}

func NewStore(initial Criteria) *Store {
	return &Store{current: initial.Clone()}
}

// OnChange registers the listener called after each dispatch.
func (s *Store) OnChange(fn func(Criteria)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Current returns a copy of the held criteria.
func (s *Store) Current() Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Dispatch reduces a into the store and returns the new criteria.
func (s *Store) Dispatch(a Action) Criteria {
	s.mu.Lock()
	s.current = Reduce(s.current, a)
	next := s.current.Clone()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(next)
	}
	return next
}
