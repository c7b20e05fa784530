package domain

type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update" // status changes; admin only
	ActionCancel Action = "cancel"
	ActionDelete Action = "delete"
)

// CanAccess is the single ownership check shared by every booking operation.
// Admins may do anything. Owners may read, cancel and delete their own
// bookings but not change status. Everyone else is denied.
func CanAccess(p Principal, b Booking, a Action) bool {
	if p.IsAdmin() {
		return true
	}
	if p.ID != b.Owner {
		return false
	}
	switch a {
	case ActionRead, ActionCancel, ActionDelete:
		return true
	default:
		return false
	}
}
