package coordinator

import "sync"

// Tracker hands out per-user generation numbers so that only the newest
// analysis of a user can be committed. Older results are stale.
type Tracker struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{gens: make(map[string]uint64)}
}

// Begin starts a new generation for the user and returns it.
func (t *Tracker) Begin(user string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gens[user]++
	return t.gens[user]
}

// Current returns the user's latest generation, 0 if none was started.
func (t *Tracker) Current(user string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gens[user]
}

// IsCurrent reports whether gen is the user's latest generation. A zero gen
// opts out of the check and is always current.
func (t *Tracker) IsCurrent(user string, gen uint64) bool {
	if gen == 0 {
		return true
	}
	return t.Current(user) == gen
}
