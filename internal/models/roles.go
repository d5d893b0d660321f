package models

// Role is the coarse permission level attached to an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// Shared role sets for gate configuration, declared once so every route
// references the same set instead of an ad hoc slice.
var (
	OwnerOnly    = []Role{RoleOwner}
	OwnerOrAdmin = []Role{RoleOwner, RoleAdmin}
)

// ParseRole maps a raw claim value onto a known role. Unknown or empty
// values collapse to RoleUser so a forged claim can never widen access.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin
	case RoleOwner:
		return RoleOwner
	default:
		return RoleUser
	}
}

// In reports whether the role is a member of the given set.
func (r Role) In(set []Role) bool {
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}

// Privileged reports whether the role bypasses resource ownership checks.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdmin
}
