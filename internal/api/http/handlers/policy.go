package handlers

import (
	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// LifecycleOp names a status-changing operation for policy checks.
type LifecycleOp string

const (
	OpStartWork LifecycleOp = "start_work"
	OpResolve   LifecycleOp = "resolve"
	OpClose     LifecycleOp = "close"
	OpReopen    LifecycleOp = "reopen"
	OpCancel    LifecycleOp = "cancel"
)

// CheckLifecyclePolicy decides whether the user may run the operation on
// the ticket. Admins and managers act on any ticket; agents only on tickets
// assigned to them; end-users may only reopen or cancel tickets they filed.
// Structural legality of the transition itself is the lifecycle service's
// concern.
func CheckLifecyclePolicy(user *domain.User, ticket *domain.Ticket, op LifecycleOp) error {
	switch user.Role {
	case domain.UserRoleAdmin, domain.UserRoleSupportManager:
		return nil
	case domain.UserRoleSupportAgent:
		if ticket.AssignedToID == nil || *ticket.AssignedToID != user.ID {
			return util.NewForbidden("agents may only act on tickets assigned to them")
		}
		return nil
	case domain.UserRoleEndUser:
		if op != OpReopen && op != OpCancel {
			return util.NewForbidden("end users may only reopen or cancel tickets")
		}
		if ticket.CreatedByID != user.ID {
			return util.NewForbidden("end users may only act on their own tickets")
		}
		return nil
	default:
		return util.NewForbidden("unknown role")
	}
}

// CanViewTicket reports whether the user may read the ticket at all. Staff
// see everything; end-users only their own tickets.
func CanViewTicket(user *domain.User, ticket *domain.Ticket) error {
	if user.Role.IsStaff() {
		return nil
	}
	if ticket.CreatedByID != user.ID {
		return util.NewForbidden("end users may only view their own tickets")
	}
	return nil
}
