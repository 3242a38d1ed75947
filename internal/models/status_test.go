package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingRequestStatusCanTransition(t *testing.T) {
	tests := []struct {
		from    BookingRequestStatus
		to      BookingRequestStatus
		allowed bool
	}{
		{RequestStatusPending, RequestStatusAccepted, true},
		{RequestStatusPending, RequestStatusDeclined, true},
		{RequestStatusPending, RequestStatusPending, false},
		{RequestStatusAccepted, RequestStatusDeclined, false},
		{RequestStatusAccepted, RequestStatusPending, false},
		{RequestStatusDeclined, RequestStatusAccepted, false},
		{RequestStatusDeclined, RequestStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestBookingRequestStatusIsLive(t *testing.T) {
	assert.True(t, RequestStatusPending.IsLive())
	assert.True(t, RequestStatusAccepted.IsLive())
	assert.False(t, RequestStatusDeclined.IsLive())
}

func TestAssignmentStatusCanTransition(t *testing.T) {
	tests := []struct {
		from    AssignmentStatus
		to      AssignmentStatus
		allowed bool
	}{
		{AssignmentStatusRequested, AssignmentStatusConfirmed, true},
		{AssignmentStatusConfirmed, AssignmentStatusArrived, true},
		{AssignmentStatusArrived, AssignmentStatusCompleted, true},
		// skipping steps is not allowed
		{AssignmentStatusRequested, AssignmentStatusArrived, false},
		{AssignmentStatusRequested, AssignmentStatusCompleted, false},
		{AssignmentStatusConfirmed, AssignmentStatusCompleted, false},
		// no regressions
		{AssignmentStatusConfirmed, AssignmentStatusRequested, false},
		{AssignmentStatusArrived, AssignmentStatusConfirmed, false},
		// cancellation from any non-terminal state
		{AssignmentStatusRequested, AssignmentStatusCancelled, true},
		{AssignmentStatusConfirmed, AssignmentStatusCancelled, true},
		{AssignmentStatusArrived, AssignmentStatusCancelled, true},
		// terminal states never move
		{AssignmentStatusCompleted, AssignmentStatusCancelled, false},
		{AssignmentStatusCancelled, AssignmentStatusRequested, false},
		{AssignmentStatusCancelled, AssignmentStatusCancelled, false},
		{AssignmentStatusCompleted, AssignmentStatusArrived, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAssignmentStatusIsTerminal(t *testing.T) {
	assert.False(t, AssignmentStatusRequested.IsTerminal())
	assert.False(t, AssignmentStatusConfirmed.IsTerminal())
	assert.False(t, AssignmentStatusArrived.IsTerminal())
	assert.True(t, AssignmentStatusCompleted.IsTerminal())
	assert.True(t, AssignmentStatusCancelled.IsTerminal())
}

func TestAssignmentStatusCountsAsCommitted(t *testing.T) {
	assert.False(t, AssignmentStatusRequested.CountsAsCommitted())
	assert.True(t, AssignmentStatusConfirmed.CountsAsCommitted())
	assert.True(t, AssignmentStatusArrived.CountsAsCommitted())
	assert.True(t, AssignmentStatusCompleted.CountsAsCommitted())
	assert.False(t, AssignmentStatusCancelled.CountsAsCommitted())
}

func TestTaskStatusIsValid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, TaskStatus("done").IsValid())
	assert.False(t, TaskStatus("").IsValid())
}
