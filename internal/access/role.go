package access

import (
	"fmt"
	"strings"
)

// Role is the authorization class of the active session.
type Role string

const (
	// RoleAdmin may do everything, including department and role management.
	RoleAdmin Role = "admin"
	// RoleSecretariat manages members, events, attendances and account creation.
	RoleSecretariat Role = "secretariat"
	// RoleResponsable manages members and attendances of a single department.
	RoleResponsable Role = "responsable"
	// RoleUser has read only access.
	RoleUser Role = "user"

	// DefaultRole is used when no role is persisted for a session.
	DefaultRole = RoleUser
)

// Roles lists every known role from the most to the least privileged.
var Roles = []Role{RoleAdmin, RoleSecretariat, RoleResponsable, RoleUser} //nolint:gochecknoglobals

// ParseRole converts s into a Role. Surrounding whitespace and case are ignored.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}

	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecretariat, RoleResponsable, RoleUser:
		return true
	default:
		return false
	}
}

// Scoped reports whether the role is restricted to a department.
func (r Role) Scoped() bool {
	return r == RoleResponsable
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is an ordered set of roles used by policy rules.
type RoleSet []Role

// Contains reports whether r is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	for _, member := range s {
		if member == r {
			return true
		}
	}

	return false
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range s {
		names = append(names, string(r))
	}

	return strings.Join(names, ",")
}

// Subject is the acting (role, department scope) pair of a session.
type Subject struct {
	Role  Role   `json:"role"`
	Scope string `json:"department,omitempty"`
}

// NewSubject builds a Subject and drops the scope for roles that are not department scoped.
func NewSubject(role Role, scope string) Subject {
	if !role.Scoped() {
		scope = ""
	}

	return Subject{Role: role, Scope: scope}
}
