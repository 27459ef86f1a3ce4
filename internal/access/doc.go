// Package access implements the role based permission and department scoping
// rules of the attendance administration service.
//
// # Roles and scope
//
// Every session acts with exactly one Role:
//   - admin: full access, including departments and role assignment
//   - secretariat: manages members, events, attendances and user accounts
//   - responsable: manages members and attendances of one department
//   - user: read only access
//
// A responsable role carries a department scope. All other roles have an
// empty scope. The pair (role, scope) is called a Subject.
//
// # Permission table
//
// The Engine maps every (Resource, Action) pair to a PolicyRule. A rule is
// one of three closed variants:
//   - AlwaysAllow: every caller passes
//   - RoleSetOnly: the caller role must be in the set
//   - RoleSetOrDeptMatch: the caller role must be in the set, or in the
//     department role set with a scope equal to the target department
//
// Pairs without a rule are denied. Check never fails; Authorize returns a
// typed error which separates a denial from a caller that forgot to pass the
// target department of a department scoped mutation.
//
// # Filtering
//
// FilterDepartmental and FilterOwned reduce record lists to what a
// responsable may see. For other roles the input is returned unchanged.
//
// # RoleContext
//
// RoleContext holds the subject of one session, persists it through a Store
// and notifies registered listeners on every change.
//
// Example usage:
//
//	engine := access.NewEngine(access.Options{EventsViewableByAllRoles: true})
//
//	rc, err := access.NewRoleContext(store, departments)
//	subject := rc.Current()
//
//	if engine.Check(subject, access.ResourceMembers, access.ActionDelete, member.Dept) {
//	    // delete the member
//	}
//
//	visible := access.FilterDepartmental(members, subject)
package access
