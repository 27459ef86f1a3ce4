package access

import (
	"fmt"
	"strings"
)

// Resource is a named domain area subject to authorization.
type Resource string

const (
	ResourceDashboard      Resource = "dashboard"
	ResourceMembers        Resource = "members"
	ResourceDepartments    Resource = "departments"
	ResourceEvents         Resource = "events"
	ResourceAttendances    Resource = "attendances"
	ResourceReports        Resource = "reports"
	ResourceUsers          Resource = "users"
	ResourceUserCreation   Resource = "userCreation"
	ResourceRoleAssignment Resource = "roleAssignment"
	ResourceHomeContent    Resource = "homeContent"
)

// Resources lists every known resource in navigation order.
var Resources = []Resource{ //nolint:gochecknoglobals
	ResourceDashboard,
	ResourceMembers,
	ResourceDepartments,
	ResourceEvents,
	ResourceAttendances,
	ResourceReports,
	ResourceUsers,
	ResourceUserCreation,
	ResourceRoleAssignment,
	ResourceHomeContent,
}

// Action is an operation kind requested against a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every known action.
var Actions = []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete} //nolint:gochecknoglobals

// MutatingActions lists the actions that change data.
var MutatingActions = []Action{ActionCreate, ActionUpdate, ActionDelete} //nolint:gochecknoglobals

// Mutates reports whether the action changes data.
func (a Action) Mutates() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// Permission is the textual "resource.action" form used by the CLI and logs.
type Permission struct {
	Resource Resource
	Action   Action
}

func (p Permission) String() string {
	return string(p.Resource) + "." + string(p.Action)
}

// ParsePermission parses "resource.action", e.g. "members.delete".
// It does not check that the pair exists in a rule table.
func ParsePermission(s string) (Permission, error) {
	resource, action, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || resource == "" || action == "" {
		return Permission{}, fmt.Errorf("permission %q is not of the form resource.action", s)
	}

	return Permission{Resource: Resource(resource), Action: Action(action)}, nil
}
