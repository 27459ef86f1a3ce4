package home

import (
	"net/http"
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

func TestPutAndGet(t *testing.T) {
	env := newEnv(t)

	secretariat := env.LoginAs(t, access.RoleSecretariat, "")
	user := env.LoginAs(t, access.RoleUser, "")

	status, _ := env.Do(t, http.MethodGet, Path+"/verse", nil, user)
	assert.Equal(t, http.StatusNotFound, status)

	verse := Input{Title: "Verset de la semaine", Content: "Car Dieu a tant aimé le monde", Reference: "Jean 3:16", IsActive: true}

	status, body := env.Do(t, http.MethodPut, Path+"/verse", verse, secretariat)
	require.Equal(t, http.StatusOK, status, string(body))

	var stored models.HomeContent
	handlertest.Decode(t, body, &stored)
	assert.Equal(t, "secretariat-", stored.UpdatedBy)

	status, body = env.Do(t, http.MethodGet, Path+"/verse", nil, user)
	require.Equal(t, http.StatusOK, status, string(body))

	var got models.HomeContent
	handlertest.Decode(t, body, &got)
	assert.Equal(t, "Jean 3:16", got.Reference)
	assert.True(t, got.IsActive)

	// hiding a block keeps the row
	verse.IsActive = false
	status, _ = env.Do(t, http.MethodPut, Path+"/verse", verse, secretariat)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.Do(t, http.MethodGet, Path+"/verse", nil, user)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.Do(t, http.MethodGet, Path, nil, secretariat)
	require.Equal(t, http.StatusOK, status)

	var all []models.HomeContent
	handlertest.Decode(t, body, &all)
	require.Len(t, all, 1)
	assert.Equal(t, stored.ID, all[0].ID)
}

func TestPut_Refused(t *testing.T) {
	env := newEnv(t)

	admin := env.LoginAs(t, access.RoleAdmin, "")

	for _, role := range []access.Role{access.RoleResponsable, access.RoleUser} {
		sessionID := env.LoginAs(t, role, "DLB")

		status, _ := env.Do(t, http.MethodPut, Path+"/video", Input{VideoURL: "https://example.com/v"}, sessionID)
		assert.Equal(t, http.StatusForbidden, status, role)

		status, _ = env.Do(t, http.MethodGet, Path, nil, sessionID)
		assert.Equal(t, http.StatusForbidden, status, role)
	}

	status, _ := env.Do(t, http.MethodPut, Path+"/banner", Input{Title: "x"}, admin)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.Do(t, http.MethodPut, Path+"/video", Input{VideoURL: "not a url"}, admin)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.Do(t, http.MethodPut, Path+"/video", Input{VideoURL: "https://example.com/v", IsActive: true}, admin)
	assert.Equal(t, http.StatusOK, status)
}
