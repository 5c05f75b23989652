package realtime

import "sync"

// Rooms tracks which sessions belong to which broadcast groups. Membership
// is indexed both ways so that disconnect cleanup is proportional to the
// number of rooms the session joined, not a scan of every room.
type Rooms struct {
	mu       sync.RWMutex
	byRoom   map[string]map[Session]struct{}
	byMember map[Session]map[string]struct{}
}

// NewRooms creates an empty room membership index.
func NewRooms() *Rooms {
	return &Rooms{
		byRoom:   make(map[string]map[Session]struct{}),
		byMember: make(map[Session]map[string]struct{}),
	}
}

// Join adds s to the room. Joining a room twice has no additional effect.
func (r *Rooms) Join(s Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byRoom[room] == nil {
		r.byRoom[room] = make(map[Session]struct{})
	}
	r.byRoom[room][s] = struct{}{}

	if r.byMember[s] == nil {
		r.byMember[s] = make(map[string]struct{})
	}
	r.byMember[s][room] = struct{}{}
}

// Leave removes s from the room. Leaving a room never joined is a no-op.
func (r *Rooms) Leave(s Session, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(s, room)
}

// LeaveAll removes s from every room it belongs to and returns the rooms
// left, so the caller can emit departure notices to the remaining peers.
func (r *Rooms) LeaveAll(s Session) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]string, 0, len(r.byMember[s]))
	for room := range r.byMember[s] {
		rooms = append(rooms, room)
	}
	for _, room := range rooms {
		r.remove(s, room)
	}
	return rooms
}

// Members returns a snapshot of the room's sessions, excluding except
// when non-nil.
func (r *Rooms) Members(room string, except Session) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.byRoom[room]
	out := make([]Session, 0, len(members))
	for s := range members {
		if s == except {
			continue
		}
		out = append(out, s)
	}
	return out
}

// MemberRooms returns the rooms s currently belongs to.
func (r *Rooms) MemberRooms(s Session) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byMember[s]))
	for room := range r.byMember[s] {
		out = append(out, room)
	}
	return out
}

// remove expects the write lock to be held.
func (r *Rooms) remove(s Session, room string) {
	if members, ok := r.byRoom[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.byRoom, room)
		}
	}
	if rooms, ok := r.byMember[s]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.byMember, s)
		}
	}
}
