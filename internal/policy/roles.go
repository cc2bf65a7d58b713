// Package policy contains the authorization decision table for Topline.
// Every HTTP handler and job calls into this package instead of re-deriving
// role logic; all functions are pure and total over their typed domain.
package policy

// Role identifies the capability level of a user account.
type Role string

// Known roles. Roles partition into manager, staff and backoffice tiers;
// ADMIN belongs to both the manager tier and the admin tier.
const (
	RoleAdmin        Role = "ADMIN"
	RoleManager      Role = "MANAGER"
	RoleServer       Role = "SERVER"
	RoleHost         Role = "HOST"
	RoleBartender    Role = "BARTENDER"
	RoleBusser       Role = "BUSSER"
	RoleChef         Role = "CHEF"
	RoleFrontDesk    Role = "FRONT_DESK"
	RoleHousekeeping Role = "HOUSEKEEPING"
	RolePurchaser    Role = "PURCHASER"
	RoleAccountant   Role = "ACCOUNTANT"
	RoleFacilities   Role = "FACILITIES"
	RoleCustom       Role = "CUSTOM"
)

// AllRoles lists every known role value.
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleManager,
		RoleServer,
		RoleHost,
		RoleBartender,
		RoleBusser,
		RoleChef,
		RoleFrontDesk,
		RoleHousekeeping,
		RolePurchaser,
		RoleAccountant,
		RoleFacilities,
		RoleCustom,
	}
}

// IsValidRole reports whether the value is one of the known roles.
func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleServer, RoleHost, RoleBartender,
		RoleBusser, RoleChef, RoleFrontDesk, RoleHousekeeping,
		RolePurchaser, RoleAccountant, RoleFacilities, RoleCustom:
		return true
	}
	return false
}

// IsManagerRole reports whether the role belongs to the manager tier.
func IsManagerRole(r Role) bool {
	return r == RoleAdmin || r == RoleManager
}

// IsStaffRole reports whether the role belongs to the staff tier.
func IsStaffRole(r Role) bool {
	switch r {
	case RoleServer, RoleHost, RoleBartender, RoleBusser, RoleChef,
		RoleFrontDesk, RoleHousekeeping:
		return true
	}
	return false
}

// IsBackofficeRole reports whether the role belongs to the backoffice tier.
func IsBackofficeRole(r Role) bool {
	switch r {
	case RolePurchaser, RoleAccountant, RoleFacilities:
		return true
	}
	return false
}

// IsAdminRole reports whether the role is ADMIN. Strictly narrower than
// IsManagerRole: managers are excluded from admin-only surfaces.
func IsAdminRole(r Role) bool {
	return r == RoleAdmin
}
