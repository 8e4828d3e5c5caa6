package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusInProgress, false},
		{StatusApproved, true},
		{StatusRejected, true},
		{Status("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusInProgress.IsValid())
	assert.True(t, StatusApproved.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, Status("pending").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestAction_IsValid(t *testing.T) {
	assert.True(t, ActionApprove.IsValid())
	assert.True(t, ActionReject.IsValid())
	assert.False(t, Action("escalate").IsValid())
	assert.False(t, Action("").IsValid())
}
