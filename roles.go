package authstate

// Role is the user's capability tier
type Role string

const (
	// RoleUser is the base tier every account starts at
	RoleUser Role = "user"
	// RolePowerUser unlocks advanced automation features
	RolePowerUser Role = "power_user"
	// RoleAgency manages accounts on behalf of clients
	RoleAgency Role = "agency"
	// RoleAdmin has full access, including user management
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePowerUser, RoleAgency, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required tier
func (r Role) IsAtLeast(min Role) bool {
	roleHierarchy := map[Role]int{
		RoleUser:      0,
		RolePowerUser: 1,
		RoleAgency:    2,
		RoleAdmin:     3,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[min]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{
		RoleUser,
		RolePowerUser,
		RoleAgency,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
