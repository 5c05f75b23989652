package realtime

import "sync"

// fakeSession records emitted events in place of a real websocket client.
type fakeSession struct {
	userID uint
	email  string

	mu     sync.Mutex
	events []Event
	closed bool
}

func newFakeSession(userID uint) *fakeSession {
	return &fakeSession{userID: userID, email: "user@test.local"}
}

func (f *fakeSession) UserID() uint  { return f.userID }
func (f *fakeSession) Email() string { return f.email }

func (f *fakeSession) Emit(ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

func (f *fakeSession) Shutdown() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSession) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
