package realtime

import "log"

// Router dispatches events to a single user, a room, or every connected
// session. Emits against closed sessions never surface to callers; they
// are logged and trigger registry self-healing instead.
type Router struct {
	presence *Presence
	rooms    *Rooms
}

// NewRouter creates a router over the given presence and room state.
func NewRouter(presence *Presence, rooms *Rooms) *Router {
	return &Router{presence: presence, rooms: rooms}
}

// ToUser delivers ev to the user's current session. It returns false when
// the user is offline or the session turned out to be stale; a stale
// session is cleaned out of the registries on the way.
func (r *Router) ToUser(userID uint, ev Event) bool {
	s, ok := r.presence.Lookup(userID)
	if !ok {
		return false
	}
	if !s.Emit(ev) {
		r.evict(s)
		return false
	}
	return true
}

// ToRoom delivers ev to every member of the room, excluding except when
// non-nil (re-broadcast of a member's own event). Individual failures do
// not block the rest of the fan-out.
func (r *Router) ToRoom(room string, ev Event, except Session) {
	for _, s := range r.rooms.Members(room, except) {
		if !s.Emit(ev) {
			r.evict(s)
		}
	}
}

// ToAll delivers ev to every connected session. With nobody connected
// this completes as a no-op.
func (r *Router) ToAll(ev Event) {
	for _, s := range r.presence.Sessions() {
		if !s.Emit(ev) {
			r.evict(s)
		}
	}
}

// evict removes a session that failed an emit from presence and rooms.
func (r *Router) evict(s Session) {
	log.Printf("realtime: dropping stale session for user %d", s.UserID())
	r.presence.Unregister(s)
	r.rooms.LeaveAll(s)
	s.Shutdown()
}
