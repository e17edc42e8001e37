package order

import "fixoo-backend/internal/models"

// transitions lists, for each status, the targets reachable through
// UpdateStatus. pending has no entries on purpose: the only way out of
// pending is Accept, which also assigns the specialist, or deletion.
// completed and cancelled are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {},
	models.StatusAccepted:   {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to models.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the targets reachable from the given status.
func AllowedTransitions(from models.OrderStatus) []models.OrderStatus {
	return append([]models.OrderStatus(nil), transitions[from]...)
}

// IsTerminal reports whether no transition leaves the given status.
func IsTerminal(s models.OrderStatus) bool {
	return models.KnownStatus(s) && len(transitions[s]) == 0 && s != models.StatusPending
}
