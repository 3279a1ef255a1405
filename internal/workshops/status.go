package workshops

import "github.com/workshop-hub/backend/internal/models"

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.StatusUpcoming:  {models.StatusOngoing, models.StatusCancelled, models.StatusPostponed},
	models.StatusOngoing:   {models.StatusCompleted, models.StatusCancelled, models.StatusPostponed},
	models.StatusPostponed: {models.StatusUpcoming, models.StatusCancelled},
}

// CanTransition reports whether a session may move from one status to another.
// Writing the current status again is always allowed and changes nothing.
func CanTransition(from, to models.SessionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no other status is reachable from s.
func Terminal(s models.SessionStatus) bool {
	return len(transitions[s]) == 0
}
