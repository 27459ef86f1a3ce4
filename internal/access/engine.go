package access

import (
	"fmt"
)

// Options selects between the permission table variants.
type Options struct {
	// EventsViewableByAllRoles lets responsable and user view events.
	// When false only admin and secretariat see the events section.
	EventsViewableByAllRoles bool `toml:"eventsViewableByAllRoles"`
}

type ruleKey struct {
	resource Resource
	action   Action
}

// Engine answers permission queries from an immutable rule table.
// It holds no session state and is safe for concurrent use.
type Engine struct {
	opts  Options
	rules map[ruleKey]PolicyRule
}

// NewEngine builds the rule table for the given options.
func NewEngine(opts Options) *Engine {
	var (
		all       = RoleSet{RoleAdmin, RoleSecretariat, RoleResponsable, RoleUser}
		staff     = RoleSet{RoleAdmin, RoleSecretariat}
		adminOnly = RoleSet{RoleAdmin}
		scoped    = RoleSetOrDeptMatch{Roles: staff, DeptRoles: RoleSet{RoleResponsable}}
		eventView = staff
	)

	if opts.EventsViewableByAllRoles {
		eventView = all
	}

	e := &Engine{
		opts:  opts,
		rules: make(map[ruleKey]PolicyRule),
	}

	// dashboard has no mutating actions
	e.set(ResourceDashboard, ActionView, AlwaysAllow{})

	e.set(ResourceMembers, ActionView, RoleSetOnly{Roles: all})
	e.setMutations(ResourceMembers, scoped)

	e.setAll(ResourceDepartments, RoleSetOnly{Roles: adminOnly})

	e.set(ResourceEvents, ActionView, RoleSetOnly{Roles: eventView})
	e.setMutations(ResourceEvents, RoleSetOnly{Roles: staff})

	e.set(ResourceAttendances, ActionView, RoleSetOnly{Roles: all})
	e.setMutations(ResourceAttendances, scoped)

	// reports are read-only
	e.set(ResourceReports, ActionView, RoleSetOnly{Roles: staff})

	e.setAll(ResourceUsers, RoleSetOnly{Roles: staff})
	e.setAll(ResourceUserCreation, RoleSetOnly{Roles: RoleSet{RoleSecretariat}})
	e.setAll(ResourceRoleAssignment, RoleSetOnly{Roles: adminOnly})
	e.setAll(ResourceHomeContent, RoleSetOnly{Roles: staff})

	return e
}

func (e *Engine) set(resource Resource, action Action, rule PolicyRule) {
	e.rules[ruleKey{resource: resource, action: action}] = rule
}

func (e *Engine) setMutations(resource Resource, rule PolicyRule) {
	for _, action := range MutatingActions {
		e.set(resource, action, rule)
	}
}

func (e *Engine) setAll(resource Resource, rule PolicyRule) {
	for _, action := range Actions {
		e.set(resource, action, rule)
	}
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Rule returns the rule registered for the pair.
func (e *Engine) Rule(resource Resource, action Action) (PolicyRule, bool) {
	rule, ok := e.rules[ruleKey{resource: resource, action: action}]
	return rule, ok
}

// Check reports whether subject may perform action on resource.
// target is the department of the record under evaluation, or "" when there is none.
// Unknown resources and actions are denied.
func (e *Engine) Check(subject Subject, resource Resource, action Action, target string) bool {
	rule, ok := e.Rule(resource, action)
	if !ok {
		return false
	}

	return rule.allows(subject, target)
}

// Authorize is the strict form of Check. It returns ErrMissingTargetDepartment
// when the decision depends on a target department that was not given, and
// ErrPermissionDenied for every other denial.
func (e *Engine) Authorize(subject Subject, resource Resource, action Action, target string) error {
	rule, ok := e.Rule(resource, action)
	if !ok {
		return fmt.Errorf("%w: %s.%s is not a known permission", ErrPermissionDenied, resource, action)
	}

	if target == "" && rule.needsTarget(subject) {
		return fmt.Errorf("%w: %s.%s", ErrMissingTargetDepartment, resource, action)
	}

	if !rule.allows(subject, target) {
		return fmt.Errorf("%w: %s may not %s %s", ErrPermissionDenied, subject.Role, action, resource)
	}

	return nil
}

// NeedsTarget reports whether the decision for subject depends on the
// department of the record, i.e. it can only be made per record.
func (e *Engine) NeedsTarget(subject Subject, resource Resource, action Action) bool {
	rule, ok := e.Rule(resource, action)
	return ok && rule.needsTarget(subject)
}

// CanView reports whether role may see the section of resource.
func (e *Engine) CanView(role Role, resource Resource) bool {
	return e.Check(Subject{Role: role}, resource, ActionView, "")
}

// ViewRoles returns the roles allowed to view resource, in Roles order.
func (e *Engine) ViewRoles(resource Resource) RoleSet {
	out := make(RoleSet, 0, len(Roles))

	for _, role := range Roles {
		if e.CanView(role, resource) {
			out = append(out, role)
		}
	}

	return out
}

// VisibleSections returns the resources role may view, in Resources order.
func (e *Engine) VisibleSections(role Role) []Resource {
	out := make([]Resource, 0, len(Resources))

	for _, resource := range Resources {
		if e.CanView(role, resource) {
			out = append(out, resource)
		}
	}

	return out
}

// MatrixEntry is one row of the permission table.
type MatrixEntry struct {
	Permission Permission
	Rule       PolicyRule
}

// Matrix returns the rule table ordered by resource then action.
func (e *Engine) Matrix() []MatrixEntry {
	out := make([]MatrixEntry, 0, len(e.rules))

	for _, resource := range Resources {
		for _, action := range Actions {
			if rule, ok := e.Rule(resource, action); ok {
				out = append(out, MatrixEntry{
					Permission: Permission{Resource: resource, Action: action},
					Rule:       rule,
				})
			}
		}
	}

	return out
}
