package member

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/handlertest"
)

func newEnv(t *testing.T) *handlertest.Env {
	t.Helper()

	env := handlertest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	return env
}

func createMember(t *testing.T, env *handlertest.Env, name, dept string) *models.Member {
	t.Helper()

	m := &models.Member{Name: name, Dept: dept}
	require.NoError(t, env.DB.Create(m).Error)

	return m
}

func memberPath(id uint64) string {
	return fmt.Sprintf("%s/%d", Path, id)
}

func TestList(t *testing.T) {
	env := newEnv(t)

	createMember(t, env, "Alice", "DLB")
	createMember(t, env, "Bob", "DCC")
	createMember(t, env, "Chloé", "DLB")

	testCases := []struct {
		name     string
		role     access.Role
		dept     string
		query    string
		expected []string
	}{
		{name: "admin", role: access.RoleAdmin, expected: []string{"Alice", "Bob", "Chloé"}},
		{name: "secretariat", role: access.RoleSecretariat, expected: []string{"Alice", "Bob", "Chloé"}},
		{name: "user", role: access.RoleUser, expected: []string{"Alice", "Bob", "Chloé"}},
		{name: "responsable", role: access.RoleResponsable, dept: "DLB", expected: []string{"Alice", "Chloé"}},
		{name: "responsable asking for another department", role: access.RoleResponsable, dept: "DFF", query: "?dept=DCC", expected: []string{}},
		{name: "admin with department query", role: access.RoleAdmin, dept: "x", query: "?dept=DCC", expected: []string{"Bob"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sessionID := env.LoginAs(t, tc.role, tc.dept)

			status, body := env.Do(t, http.MethodGet, Path+tc.query, nil, sessionID)
			require.Equal(t, http.StatusOK, status, string(body))

			var members []models.Member
			handlertest.Decode(t, body, &members)

			names := make([]string, 0, len(members))
			for _, m := range members {
				names = append(names, m.Name)
			}

			assert.Equal(t, tc.expected, names)
		})
	}
}

func TestGet_HiddenOutsideScope(t *testing.T) {
	env := newEnv(t)

	own := createMember(t, env, "Alice", "DLB")
	other := createMember(t, env, "Bob", "DCC")

	sessionID := env.LoginAs(t, access.RoleResponsable, "DLB")

	status, _ := env.Do(t, http.MethodGet, memberPath(own.ID), nil, sessionID)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.Do(t, http.MethodGet, memberPath(other.ID), nil, sessionID)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.Do(t, http.MethodGet, Path+"/abc", nil, sessionID)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreate(t *testing.T) {
	env := newEnv(t)

	testCases := []struct {
		name       string
		role       access.Role
		dept       string
		input      Input
		statusCode int
	}{
		{name: "admin any department", role: access.RoleAdmin, input: Input{Name: "A", Dept: "DCC"}, statusCode: http.StatusCreated},
		{name: "secretariat any department", role: access.RoleSecretariat, input: Input{Name: "B", Dept: "DLB"}, statusCode: http.StatusCreated},
		{name: "responsable own department", role: access.RoleResponsable, dept: "DLB", input: Input{Name: "C", Dept: "DLB"}, statusCode: http.StatusCreated},
		{name: "responsable other department", role: access.RoleResponsable, dept: "DLB", input: Input{Name: "D", Dept: "DCC"}, statusCode: http.StatusForbidden},
		{name: "responsable without department", role: access.RoleResponsable, dept: "DLB", input: Input{Name: "E"}, statusCode: http.StatusBadRequest},
		{name: "responsable own department padded", role: access.RoleResponsable, dept: "DLB", input: Input{Name: "C2", Dept: " DLB "}, statusCode: http.StatusCreated},
		{name: "responsable blank department", role: access.RoleResponsable, dept: "DLB", input: Input{Name: "E2", Dept: "   "}, statusCode: http.StatusBadRequest},
		{name: "user never", role: access.RoleUser, input: Input{Name: "F", Dept: "DLB"}, statusCode: http.StatusForbidden},
		{name: "unknown department", role: access.RoleAdmin, input: Input{Name: "G", Dept: "Cuisine"}, statusCode: http.StatusBadRequest},
		{name: "missing name", role: access.RoleAdmin, input: Input{Dept: "DLB"}, statusCode: http.StatusBadRequest},
		{name: "invalid email", role: access.RoleAdmin, input: Input{Name: "H", Dept: "DLB", Email: "nope"}, statusCode: http.StatusBadRequest},
	}

	sessions := map[string]string{}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key := string(tc.role) + tc.dept

			sessionID, ok := sessions[key]
			if !ok {
				sessionID = env.LoginAs(t, tc.role, tc.dept)
				sessions[key] = sessionID
			}

			status, body := env.Do(t, http.MethodPost, Path, tc.input, sessionID)
			require.Equal(t, tc.statusCode, status, string(body))

			if status == http.StatusForbidden {
				var resp auth.ErrorResponse
				handlertest.Decode(t, body, &resp)
				assert.Equal(t, auth.MsgPermissionDenied, resp.Error)
			}

			if status == http.StatusCreated {
				var created models.Member
				handlertest.Decode(t, body, &created)
				assert.Equal(t, strings.TrimSpace(tc.input.Dept), created.Dept)
			}

			if status != http.StatusCreated {
				var count int64
				require.NoError(t, env.DB.Model(&models.Member{}).Where("name = ?", tc.input.Name).Count(&count).Error)
				assert.Zero(t, count, "refused mutation must not be performed")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	env := newEnv(t)

	own := createMember(t, env, "Alice", "DLB")
	other := createMember(t, env, "Bob", "DCC")

	responsable := env.LoginAs(t, access.RoleResponsable, "DLB")
	admin := env.LoginAs(t, access.RoleAdmin, "")

	status, body := env.Do(t, http.MethodPut, memberPath(own.ID), Input{Name: "Alice M.", Dept: "DLB", Role: "choriste"}, responsable)
	require.Equal(t, http.StatusOK, status, string(body))

	var updated models.Member
	handlertest.Decode(t, body, &updated)
	assert.Equal(t, "Alice M.", updated.Name)
	assert.Equal(t, "choriste", updated.Role)

	// moving out of the own department needs the permission on the new one
	status, _ = env.Do(t, http.MethodPut, memberPath(own.ID), Input{Name: "Alice", Dept: "DCC"}, responsable)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Do(t, http.MethodPut, memberPath(other.ID), Input{Name: "Bob", Dept: "DCC"}, responsable)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.Do(t, http.MethodPut, memberPath(other.ID), Input{Name: "Bob", Dept: "DLB"}, admin)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = env.Do(t, http.MethodPut, memberPath(9999), Input{Name: "X", Dept: "DLB"}, admin)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDelete(t *testing.T) {
	env := newEnv(t)

	own := createMember(t, env, "Alice", "DLB")
	other := createMember(t, env, "Bob", "DCC")

	event := &models.Event{Name: "Culte"}
	require.NoError(t, env.DB.Create(event).Error)
	require.NoError(t, env.DB.Create(&models.Attendance{MemberID: own.ID, EventID: event.ID}).Error)

	user := env.LoginAs(t, access.RoleUser, "")
	responsable := env.LoginAs(t, access.RoleResponsable, "DLB")

	status, _ := env.Do(t, http.MethodDelete, memberPath(own.ID), nil, user)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Do(t, http.MethodDelete, memberPath(other.ID), nil, responsable)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.Do(t, http.MethodDelete, memberPath(own.ID), nil, responsable)
	assert.Equal(t, http.StatusNoContent, status)

	var count int64
	require.NoError(t, env.DB.Model(&models.Attendance{}).Count(&count).Error)
	assert.Zero(t, count)
}
