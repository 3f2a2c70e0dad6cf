package listing

import "sync"

// Pagination describes the paging block of a list response.
// It is replaced wholesale on every apply, never merged.
type Pagination struct {
	Page       int `json:"page,omitempty"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// State holds what a listing page currently displays. All methods are safe
// for concurrent use; the coordinator writes, page accessors read.
type State[T any] struct {
	mu          sync.RWMutex
	items       []T
	pagination  Pagination
	appliedKey  string
	everApplied bool
}

// NewState returns an empty listing state.
func NewState[T any]() *State[T] {
	return &State[T]{}
}

// Apply replaces items and pagination with a completed response and records
// its fetch key as the one now displayed.
func (s *State[T]) Apply(key string, items []T, pagination Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.pagination = pagination
	s.appliedKey = key
	s.everApplied = true
}

// Items returns a copy of the currently displayed items.
func (s *State[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of currently displayed items.
func (s *State[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Pagination returns the currently displayed pagination block.
func (s *State[T]) Pagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// AppliedKey returns the fetch key of the displayed response, or the empty
// string when nothing has been applied yet.
func (s *State[T]) AppliedKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appliedKey
}

// Degrade handles a failed fetch. If any response was ever applied the
// displayed items are kept as a stale snapshot and Degrade reports true.
// On a first-load failure there is nothing to fall back to: items and
// pagination clear to empty and Degrade reports false.
func (s *State[T]) Degrade() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.everApplied {
		return true
	}

	s.items = nil
	s.pagination = Pagination{}
	return false
}

// Find returns the first displayed item matching match.
func (s *State[T]) Find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Replace swaps the first displayed item matching match with repl and
// reports whether a match was found. Used by optimistic mutations to patch
// and roll back individual records in place.
func (s *State[T]) Replace(match func(T) bool, repl T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if match(item) {
			s.items[i] = repl
			return true
		}
	}
	return false
}
