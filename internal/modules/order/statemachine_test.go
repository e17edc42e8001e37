package order

import (
	"testing"

	"fixoo-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusAccepted,
	models.StatusInProgress,
	models.StatusCompleted,
	models.StatusCancelled,
}

func TestCanTransitionLegalEdges(t *testing.T) {
	legal := map[models.OrderStatus][]models.OrderStatus{
		models.StatusAccepted:   {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "transition %s -> %s", from, to)
		}
	}
}

func TestPendingHasNoOutgoingEdges(t *testing.T) {
	// Leaving pending requires Accept, which also assigns the specialist.
	assert.Empty(t, AllowedTransitions(models.StatusPending))
	assert.False(t, CanTransition(models.StatusPending, models.StatusAccepted))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusAccepted))
	assert.False(t, IsTerminal(models.StatusInProgress))
	assert.False(t, IsTerminal(models.OrderStatus("bogus")))
}

func TestUnknownStatusHasNoTransitions(t *testing.T) {
	assert.False(t, CanTransition(models.OrderStatus("bogus"), models.StatusAccepted))
	assert.Empty(t, AllowedTransitions(models.OrderStatus("bogus")))
}
