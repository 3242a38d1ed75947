package notify

import (
	"log"
	"sync"

	"utsav-backend/internal/models"
)

// EventType identifies a domain event emitted by the booking/budget services
type EventType string

const (
	EventRequestAccepted         EventType = "RequestAccepted"
	EventAssignmentStatusChanged EventType = "AssignmentStatusChanged"
	EventCategoryOverBudget      EventType = "CategoryOverBudget"
)

// DomainEvent carries what happened; the dispatcher sends nothing itself,
// subscribers decide whether to email, push or ignore.
type DomainEvent struct {
	Type       EventType               `json:"type"`
	EventID    int                     `json:"event_id"`
	RequestID  *int                    `json:"request_id,omitempty"`
	Assignment *models.VendorAssignment `json:"assignment,omitempty"`
	Category   models.BudgetCategory   `json:"category,omitempty"`
	Message    string                  `json:"message"`
}

// Subscriber receives domain events. Handlers must not block; the dispatcher
// calls them synchronously under its read lock.
type Subscriber func(DomainEvent)

// Dispatcher is an in-process pub/sub for domain events
type Dispatcher struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a subscriber for all domain events
func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, s)
}

// Publish delivers the event to every subscriber
func (d *Dispatcher) Publish(ev DomainEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.subs {
		s(ev)
	}
}

// LogSubscriber writes every domain event to the server log
func LogSubscriber(ev DomainEvent) {
	log.Printf("[DomainEvent] %s event=%d %s", ev.Type, ev.EventID, ev.Message)
}
