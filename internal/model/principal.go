package model

import "github.com/google/uuid"

// Principal is the already-resolved actor of a request. Core operations take
// it as a parameter instead of reaching into ambient session state.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsSuperuser() bool { return p.Role == "superuser" }
func (p Principal) IsAdmin() bool     { return p.Role == "admin" }
func (p Principal) IsClerk() bool     { return p.Role == "clerk" }
func (p Principal) IsStaff() bool     { return p.Role == "staff" }
func (p Principal) IsWarehouse() bool { return p.Role == "warehouse" }

// CanManagePayments reports whether the principal may mutate ledger state.
func (p Principal) CanManagePayments() bool {
	return p.IsSuperuser() || p.IsAdmin() || p.IsClerk()
}

// CanRevert reports whether the principal may regress a work report status.
func (p Principal) CanRevert() bool {
	return p.IsSuperuser() || p.IsAdmin()
}
