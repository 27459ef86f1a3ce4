package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/session"
)

// PublicPaths are served without session.
var PublicPaths = []string{ //nolint:gochecknoglobals
	"/api/login",
	"/api/logout",
	"/health",
	"/metrics",
}

// New returns a Fiber middleware that checks for user authentication and
// loads the acting role of the session.
func New(authService *auth.Service, expiry time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsPublicPath(c) {
			return c.Next()
		}

		sessionID := c.Cookies(session.CookieName)

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil || sessData.User.ID == 0 {
			return unauthorized(c)
		}

		// reload the account so a disabled account loses its sessions
		user, err := authService.Local().GetUserByUsername(sessData.User.Username)
		if err != nil || !user.Active() {
			log.Info().Str("user", sessData.User.Username).Msg("session of unknown or disabled account dropped")

			if errDelete := session.Delete(sessionID); errDelete != nil {
				log.Error().Err(errDelete).Msg("failed to delete session")
			}

			return unauthorized(c)
		}

		rc, err := authService.RoleContext(session.NewRoleStore(sessionID, expiry))
		if err != nil {
			log.Error().Err(err).Msg("failed to load role context")
			return c.Status(fiber.StatusInternalServerError).JSON(auth.ErrorResponse{Error: "Internal Server Error"})
		}

		rc.RegisterChangeListener(auth.LogRoleChanges(user.Username))

		// role and department changes of the account apply to its open sessions
		if _, err = authService.SyncSession(rc, user); err != nil {
			log.Warn().Err(err).Str("user", user.Username).Msg("session of account without valid role dropped")

			if errDelete := session.Delete(sessionID); errDelete != nil {
				log.Error().Err(errDelete).Msg("failed to delete session")
			}

			return unauthorized(c)
		}

		subject := rc.Current()

		c.Locals(auth.LocalsCurrentUser, user)
		c.Locals(auth.LocalsRoleContext, rc)
		c.Locals(auth.LocalsRole, subject.Role.String())
		c.Locals(auth.LocalsDepartment, subject.Scope)

		return c.Next()
	}
}

// IsPublicPath checks if the current request may be served without session.
func IsPublicPath(c *fiber.Ctx) bool {
	path := strings.ToLower(c.Path())

	for _, public := range PublicPaths {
		if path == public || strings.HasPrefix(path, public+"/") {
			return true
		}
	}

	return false
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(auth.ErrorResponse{Error: "Unauthorized"})
}
