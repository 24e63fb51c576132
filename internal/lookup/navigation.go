package lookup

import "sync/atomic"

// Navigation hands out generation tickets, one per page view. A lookup started
// under an older ticket is discarded once a newer navigation begins.
type Navigation struct {
	generation atomic.Uint64
}

// Begin starts a new navigation and returns its ticket.
func (n *Navigation) Begin() uint64 {
	return n.generation.Add(1)
}

// Current returns the latest ticket, 0 before any navigation.
func (n *Navigation) Current() uint64 {
	return n.generation.Load()
}

// IsCurrent reports whether ticket still belongs to the latest navigation.
// Ticket 0 opts out of generation tracking and is always current.
func (n *Navigation) IsCurrent(ticket uint64) bool {
	return ticket == 0 || ticket == n.generation.Load()
}
