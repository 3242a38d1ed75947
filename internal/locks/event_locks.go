package locks

import "sync"

// EventLocks serializes mutating operations per event ID.
// Bookings, assignments and budget edits for one event share a mutex;
// unrelated events never block each other.
type EventLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewEventLocks() *EventLocks {
	return &EventLocks{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the mutex for the given event, creating it on first use.
// Locks are never released from the map; the set of live events is small.
func (e *EventLocks) Lock(eventID int) {
	e.mu.Lock()
	m, ok := e.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		e.locks[eventID] = m
	}
	e.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for the given event
func (e *EventLocks) Unlock(eventID int) {
	e.mu.Lock()
	m, ok := e.locks[eventID]
	e.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
