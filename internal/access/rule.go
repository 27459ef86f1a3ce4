package access

// PolicyRule decides a single (resource, action) pair.
// The set of implementations is closed: AlwaysAllow, RoleSetOnly and RoleSetOrDeptMatch.
type PolicyRule interface {
	// allows reports whether subject may act on a record of the target department.
	allows(subject Subject, target string) bool

	// needsTarget reports whether the decision for subject depends on the target department.
	needsTarget(subject Subject) bool

	String() string
}

// AlwaysAllow lets every caller pass.
type AlwaysAllow struct{}

func (AlwaysAllow) allows(Subject, string) bool { return true }

func (AlwaysAllow) needsTarget(Subject) bool { return false }

func (AlwaysAllow) String() string { return "*" }

// RoleSetOnly allows callers whose role is in Roles.
type RoleSetOnly struct {
	Roles RoleSet
}

func (r RoleSetOnly) allows(subject Subject, _ string) bool {
	return r.Roles.Contains(subject.Role)
}

func (RoleSetOnly) needsTarget(Subject) bool { return false }

func (r RoleSetOnly) String() string { return r.Roles.String() }

// RoleSetOrDeptMatch allows callers whose role is in Roles regardless of the
// department, and callers whose role is in DeptRoles when their scope is set
// and equals the target department.
type RoleSetOrDeptMatch struct {
	Roles     RoleSet
	DeptRoles RoleSet
}

func (r RoleSetOrDeptMatch) allows(subject Subject, target string) bool {
	if r.Roles.Contains(subject.Role) {
		return true
	}

	if !r.DeptRoles.Contains(subject.Role) {
		return false
	}

	// empty scope or empty target never matches
	return subject.Scope != "" && target != "" && target == subject.Scope
}

func (r RoleSetOrDeptMatch) needsTarget(subject Subject) bool {
	return !r.Roles.Contains(subject.Role) && r.DeptRoles.Contains(subject.Role)
}

func (r RoleSetOrDeptMatch) String() string {
	if len(r.DeptRoles) == 0 {
		return r.Roles.String()
	}

	if len(r.Roles) == 0 {
		return r.DeptRoles.String() + "(own department)"
	}

	return r.Roles.String() + "," + r.DeptRoles.String() + "(own department)"
}
