package logout

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler/handlertest"
)

func TestLogout(t *testing.T) {
	env := handlertest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	env.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	sessionID := env.LoginAs(t, access.RoleResponsable, "DLB")

	status, _ := env.Do(t, http.MethodGet, "/api/ping", nil, sessionID)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.Do(t, http.MethodPost, Path, nil, sessionID)
	assert.Equal(t, http.StatusNoContent, status)

	// session data and role context are gone
	assert.Empty(t, env.Storage.Keys())

	status, _ = env.Do(t, http.MethodGet, "/api/ping", nil, sessionID)
	assert.Equal(t, http.StatusUnauthorized, status)

	// logging out twice is harmless
	status, _ = env.Do(t, http.MethodPost, Path, nil, "")
	assert.Equal(t, http.StatusNoContent, status)
}
