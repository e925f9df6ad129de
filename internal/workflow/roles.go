package workflow

// Role is the closed set of user roles recognized by the workflow.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleBursar      Role = "bursar"
	RoleHeadTeacher Role = "head_teacher"
	RoleDirector    Role = "director"
	RoleStaff       Role = "staff"
)

// ValidRole returns true for a known role
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleBursar, RoleHeadTeacher, RoleDirector, RoleStaff:
		return true
	}
	return false
}

// Label returns the display label for a role. The switch is exhaustive over
// the closed role set.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleBursar:
		return "Bursar"
	case RoleHeadTeacher:
		return "Head Teacher"
	case RoleDirector:
		return "Director"
	case RoleStaff:
		return "Staff"
	}
	return string(r)
}

// DefaultRoleForLevel returns the fallback approver role for an approval
// level when tenant settings omit one.
func DefaultRoleForLevel(level int) Role {
	switch level {
	case 1:
		return RoleBursar
	case 2:
		return RoleHeadTeacher
	default:
		return RoleDirector
	}
}

// CanActOnLevel reports whether a user role may decide an approval level
// bound to the given role. Admins may decide any level.
func CanActOnLevel(userRole, levelRole Role) bool {
	return userRole == RoleAdmin || userRole == levelRole
}
