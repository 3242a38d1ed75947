package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherDeliversToAllSubscribers(t *testing.T) {
	d := NewDispatcher()

	var first, second []DomainEvent
	d.Subscribe(func(ev DomainEvent) { first = append(first, ev) })
	d.Subscribe(func(ev DomainEvent) { second = append(second, ev) })

	d.Publish(DomainEvent{Type: EventRequestAccepted, EventID: 7, Message: "accepted"})
	d.Publish(DomainEvent{Type: EventCategoryOverBudget, EventID: 7, Message: "over"})

	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
	assert.Equal(t, EventRequestAccepted, first[0].Type)
	assert.Equal(t, EventCategoryOverBudget, first[1].Type)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, func() {
		d.Publish(DomainEvent{Type: EventAssignmentStatusChanged, EventID: 1})
	})
}
