package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
)

func TestExplain(t *testing.T) {
	engine := access.NewEngine(access.Options{EventsViewableByAllRoles: true})
	updateMembers := access.Permission{Resource: access.ResourceMembers, Action: access.ActionUpdate}

	testCases := []struct {
		name       string
		subject    access.Subject
		permission access.Permission
		target     string
		allowed    bool
		reason     string
		rule       string
	}{
		{
			name:       "responsable in own department",
			subject:    access.NewSubject(access.RoleResponsable, "DLB"),
			permission: updateMembers,
			target:     "DLB",
			allowed:    true,
			rule:       "admin,secretariat,responsable(own department)",
		},
		{
			name:       "responsable without target",
			subject:    access.NewSubject(access.RoleResponsable, "DLB"),
			permission: updateMembers,
			reason:     "a target department is required",
			rule:       "admin,secretariat,responsable(own department)",
		},
		{
			name:       "dashboard is open",
			subject:    access.NewSubject(access.RoleUser, ""),
			permission: access.Permission{Resource: access.ResourceDashboard, Action: access.ActionView},
			allowed:    true,
			rule:       "*",
		},
		{
			name:       "unknown permission",
			subject:    access.NewSubject(access.RoleAdmin, ""),
			permission: access.Permission{Resource: access.ResourceDashboard, Action: access.ActionDelete},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Explain(engine, tc.subject, tc.permission, tc.target)

			assert.Equal(t, tc.allowed, decision.Allowed)
			assert.Equal(t, tc.rule, decision.Rule)

			if tc.reason != "" {
				assert.Equal(t, tc.reason, decision.Reason)
			}

			if !tc.allowed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestPermissionNames(t *testing.T) {
	names := PermissionNames(access.NewEngine(access.Options{}))

	assert.Contains(t, names, "dashboard.view")
	assert.Contains(t, names, "roleAssignment.update")
	assert.NotContains(t, names, "dashboard.delete")
	assert.Len(t, names, 1+4*8)
}
