package course

import "sync"

// PendingStore holds the single most recent course lookup so a bare section
// code can complete it. The slot is global across sessions on purpose: the
// last lookup wins, whoever made it.
type PendingStore struct {
	mu      sync.Mutex
	details Details
	set     bool
}

// NewPendingStore creates an empty pending slot.
func NewPendingStore() *PendingStore {
	return &PendingStore{}
}

// Set replaces the pending lookup.
func (s *PendingStore) Set(d Details) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = d
	s.set = true
}

// Get returns the pending lookup if one with complete details exists.
func (s *PendingStore) Get() (Details, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set || !s.details.Complete() {
		return Details{}, false
	}
	return s.details, true
}
