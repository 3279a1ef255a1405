package workshops

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workshop-hub/backend/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.SessionStatus
		ok       bool
	}{
		{models.StatusUpcoming, models.StatusOngoing, true},
		{models.StatusOngoing, models.StatusCompleted, true},
		{models.StatusUpcoming, models.StatusCancelled, true},
		{models.StatusOngoing, models.StatusPostponed, true},
		{models.StatusPostponed, models.StatusUpcoming, true},
		{models.StatusPostponed, models.StatusCancelled, true},
		{models.StatusUpcoming, models.StatusUpcoming, true},
		{models.StatusCompleted, models.StatusCompleted, true},
		{models.StatusUpcoming, models.StatusCompleted, false},
		{models.StatusPostponed, models.StatusOngoing, false},
		{models.StatusCompleted, models.StatusOngoing, false},
		{models.StatusCancelled, models.StatusUpcoming, false},
		{models.StatusOngoing, models.StatusUpcoming, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(models.StatusCompleted))
	assert.True(t, Terminal(models.StatusCancelled))
	assert.False(t, Terminal(models.StatusUpcoming))
	assert.False(t, Terminal(models.StatusPostponed))
}
