package view

import "sync"

// RenderFunc receives every state the store settles on, in merge order.
type RenderFunc func(State)

// Store owns one State. Every successful Merge re-renders synchronously;
// there is no batching.
type Store struct {
	mu     sync.Mutex
	state  State
	render RenderFunc
}

func NewStore(initial State, render RenderFunc) *Store {
	if render == nil {
		render = func(State) {}
	}
	return &Store{state: initial, render: render}
}

// Merge replaces every slice present in p and re-renders. A patch that
// would leave SelectedRover outside RoverNames is rejected as a whole and
// nothing is rendered.
func (s *Store) Merge(p Patch) error {
	return s.Update(func(State) Patch { return p })
}

// Update builds the patch from the current state and merges it atomically.
// Use it when the new slice is derived from the old one.
func (s *Store) Update(fn func(State) Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.apply(fn(s.state))
	if err != nil {
		return err
	}
	s.state = next
	s.render(next)
	return nil
}

// Render re-renders the current state without changing it.
func (s *Store) Render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.render(s.state)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
