package department

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
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

func TestNames_EveryRole(t *testing.T) {
	env := newEnv(t)

	for _, role := range access.Roles {
		t.Run(string(role), func(t *testing.T) {
			sessionID := env.LoginAs(t, role, "DLB")

			status, body := env.Do(t, http.MethodGet, NamesPath, nil, sessionID)
			require.Equal(t, http.StatusOK, status)

			var names []string
			handlertest.Decode(t, body, &names)
			assert.Equal(t, handlertest.Departments, names)
		})
	}

	status, _ := env.Do(t, http.MethodGet, NamesPath, nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestList_AdminOnly(t *testing.T) {
	env := newEnv(t)

	testCases := []struct {
		role       access.Role
		statusCode int
	}{
		{role: access.RoleAdmin, statusCode: http.StatusOK},
		{role: access.RoleSecretariat, statusCode: http.StatusForbidden},
		{role: access.RoleResponsable, statusCode: http.StatusForbidden},
		{role: access.RoleUser, statusCode: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role), func(t *testing.T) {
			sessionID := env.LoginAs(t, tc.role, "DLB")

			status, body := env.Do(t, http.MethodGet, Path, nil, sessionID)
			require.Equal(t, tc.statusCode, status)

			if status == http.StatusOK {
				var departments []models.Department
				handlertest.Decode(t, body, &departments)
				assert.Len(t, departments, len(handlertest.Departments))
			}
		})
	}
}

func TestCreate(t *testing.T) {
	env := newEnv(t)

	admin := env.LoginAs(t, access.RoleAdmin, "")
	secretariat := env.LoginAs(t, access.RoleSecretariat, "")

	status, body := env.Do(t, http.MethodPost, Path, Input{Name: "  Louange "}, admin)
	require.Equal(t, http.StatusCreated, status, string(body))

	var created models.Department
	handlertest.Decode(t, body, &created)
	assert.Equal(t, "Louange", created.Name)

	status, _ = env.Do(t, http.MethodPost, Path, Input{Name: "louange"}, admin)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.Do(t, http.MethodPost, Path, Input{Name: ""}, admin)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.Do(t, http.MethodPost, Path, Input{Name: "Technique"}, secretariat)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestDelete(t *testing.T) {
	env := newEnv(t)

	require.NoError(t, env.DB.Create(&models.Member{Name: "Alice", Dept: "DLB"}).Error)

	admin := env.LoginAs(t, access.RoleAdmin, "")
	responsable := env.LoginAs(t, access.RoleResponsable, "DFF")

	status, _ := env.Do(t, http.MethodDelete, Path+"/DFF", nil, responsable)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.Do(t, http.MethodDelete, Path+"/DLB", nil, admin)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.Do(t, http.MethodDelete, Path+"/"+url.PathEscape("Médias"), nil, admin)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = env.Do(t, http.MethodDelete, Path+"/Cuisine", nil, admin)
	assert.Equal(t, http.StatusNotFound, status)

	var names []string
	require.NoError(t, env.DB.Model(&models.Department{}).Order("id ASC").Pluck("name", &names).Error)
	assert.NotContains(t, names, "Médias")
	assert.Contains(t, names, "DLB")
}
