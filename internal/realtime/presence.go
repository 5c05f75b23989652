package realtime

import "sync"

// Presence is the authoritative record of which users currently have a
// live session. It holds at most one session per user: a reconnect
// displaces and closes the previous one. Instances are plain values so
// each test can own an isolated registry.
type Presence struct {
	mu     sync.RWMutex
	online map[uint]Session
}

// NewPresence creates an empty presence registry.
func NewPresence() *Presence {
	return &Presence{online: make(map[uint]Session)}
}

// Register records s as the user's current session. Any previously
// registered session for the same user is shut down.
func (p *Presence) Register(s Session) {
	p.mu.Lock()
	prev := p.online[s.UserID()]
	p.online[s.UserID()] = s
	p.mu.Unlock()

	if prev != nil && prev != s {
		prev.Shutdown()
	}
}

// Unregister removes the user's entry, but only if s is still the
// registered session. A stale disconnect arriving after a reconnect must
// not evict the newer session.
func (p *Presence) Unregister(s Session) {
	p.mu.Lock()
	if cur, ok := p.online[s.UserID()]; ok && cur == s {
		delete(p.online, s.UserID())
	}
	p.mu.Unlock()
}

// Lookup returns the user's current session, if any.
func (p *Presence) Lookup(userID uint) (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.online[userID]
	return s, ok
}

// IsOnline reports whether the user has a live session.
func (p *Presence) IsOnline(userID uint) bool {
	_, ok := p.Lookup(userID)
	return ok
}

// ListOnline returns the identities of all currently connected users.
func (p *Presence) ListOnline() []uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]uint, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	return ids
}

// Sessions returns a snapshot of all live sessions, for global broadcast.
func (p *Presence) Sessions() []Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Session, 0, len(p.online))
	for _, s := range p.online {
		out = append(out, s)
	}
	return out
}
