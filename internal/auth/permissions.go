package auth

import (
	"errors"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
)

// Decision is the explained outcome of a permission check.
type Decision struct {
	Permission access.Permission `json:"permission"`
	Subject    access.Subject    `json:"subject"`
	Target     string            `json:"target,omitempty"`
	Rule       string            `json:"rule"`
	Allowed    bool              `json:"allowed"`
	Reason     string            `json:"reason,omitempty"`
}

// Explain evaluates permission for subject and reports the rule that decided it.
func Explain(engine *access.Engine, subject access.Subject, permission access.Permission, target string) Decision {
	decision := Decision{
		Permission: permission,
		Subject:    subject,
		Target:     target,
	}

	rule, ok := engine.Rule(permission.Resource, permission.Action)
	if ok {
		decision.Rule = rule.String()
	}

	err := engine.Authorize(subject, permission.Resource, permission.Action, target)

	switch {
	case err == nil:
		decision.Allowed = true
	case errors.Is(err, access.ErrMissingTargetDepartment):
		decision.Reason = "a target department is required"
	default:
		decision.Reason = err.Error()
	}

	return decision
}

// PermissionNames lists every permission of the engine as "resource.action".
func PermissionNames(engine *access.Engine) []string {
	matrix := engine.Matrix()
	out := make([]string, 0, len(matrix))

	for _, entry := range matrix {
		out = append(out, entry.Permission.String())
	}

	return out
}
