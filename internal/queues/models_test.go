package queues

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		action  Action
		from    Status
		want    Status
		allowed bool
	}{
		{ActionCall, StatusWaiting, StatusCalled, true},
		{ActionCall, StatusCalled, "", false},
		{ActionCall, StatusCancelled, "", false},
		{ActionComplete, StatusCalled, StatusCompleted, true},
		{ActionComplete, StatusServing, StatusCompleted, true},
		{ActionComplete, StatusWaiting, "", false},
		{ActionNoShow, StatusCalled, StatusNoShow, true},
		{ActionNoShow, StatusServing, StatusNoShow, true},
		{ActionNoShow, StatusCompleted, "", false},
		{ActionCancel, StatusWaiting, StatusCancelled, true},
		{ActionCancel, StatusCalled, "", false},
		{ActionCancel, StatusNoShow, "", false},
		{Action("teleport"), StatusWaiting, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_from_"+string(tt.from), func(t *testing.T) {
			got, ok := NextStatus(tt.action, tt.from)
			assert.Equal(t, tt.allowed, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, status := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, status.IsTerminal())
		for action := range transitions {
			_, ok := NextStatus(action, status)
			assert.False(t, ok, "%s should not leave %s", action, status)
		}
	}
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusServing.IsValid())
	assert.False(t, Status("DONE").IsValid())
	assert.False(t, Status("waiting").IsValid())

	assert.True(t, StatusCalled.IsActive())
	assert.True(t, StatusServing.IsActive())
	assert.False(t, StatusWaiting.IsActive())
}
