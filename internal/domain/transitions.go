package domain

// statusTransitions is the closed set of legal status moves. It encodes what
// is structurally legal; who may invoke a transition is decided by the
// calling layer. The table is never mutated after init.
var statusTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusCreated:    {TicketStatusAssigned, TicketStatusCancelled},
	TicketStatusAssigned:   {TicketStatusInProgress, TicketStatusCancelled},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusAssigned, TicketStatusCancelled},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:     {TicketStatusInProgress},
	TicketStatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is legal.
// Unknown statuses have no outgoing transitions.
func CanTransition(from, to TicketStatus) bool {
	for _, candidate := range statusTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from the given one. Terminal and
// unknown statuses yield an empty slice.
func AllowedNext(from TicketStatus) []TicketStatus {
	row := statusTransitions[from]
	out := make([]TicketStatus, len(row))
	copy(out, row)
	return out
}
