package session

import (
	"errors"
	"sync"
)

// ErrRoomBusy is returned by Claim while another connection holds the session.
var ErrRoomBusy = errors.New("session: room already occupied")

// Host gates the one live session: a single-player room admits a single
// connection. Later claimants are refused until the holder releases.
type Host struct {
	mu      sync.Mutex
	session *Session
	claimed bool
}

// NewHost wraps the live session in an occupancy gate.
func NewHost(s *Session) *Host {
	return &Host{session: s}
}

// Claim hands out the session, or ErrRoomBusy if it is already held.
func (h *Host) Claim() (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.claimed {
		return nil, ErrRoomBusy
	}
	h.claimed = true
	return h.session, nil
}

// Release frees the session for the next claimant. Safe to call when
// nothing is claimed.
func (h *Host) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.claimed = false
}

// Occupied reports whether a connection currently holds the session.
func (h *Host) Occupied() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.claimed
}
