package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

// Keys of the values the session middleware puts into fiber.Locals.
const (
	LocalsCurrentUser = "CurrentUser"
	LocalsRoleContext = "RoleContext"
	LocalsRole        = "role"
	LocalsDepartment  = "department"
)

// MsgPermissionDenied is the message sent with every 403 response.
const MsgPermissionDenied = "Pas la permission."

// ErrorResponse is the JSON body of a refused request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CurrentUser returns the logged-in account of the request.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(LocalsCurrentUser).(*models.User)
	return user, ok && user != nil
}

// CurrentRoleContext returns the role context of the request.
func CurrentRoleContext(c *fiber.Ctx) (*access.RoleContext, bool) {
	rc, ok := c.Locals(LocalsRoleContext).(*access.RoleContext)
	return rc, ok && rc != nil
}

// CurrentSubject returns the acting subject of the request.
// Requests without role context act as the default role.
func CurrentSubject(c *fiber.Ctx) access.Subject {
	if rc, ok := CurrentRoleContext(c); ok {
		return rc.Current()
	}

	return access.Subject{Role: access.DefaultRole}
}

// RequireSection creates Fiber middleware that requires the view permission on a resource.
func RequireSection(authService *Service, resource access.Resource) fiber.Handler {
	return RequirePermission(authService, access.Permission{Resource: resource, Action: access.ActionView})
}

// RequirePermission creates Fiber middleware that requires a permission without target department.
func RequirePermission(authService *Service, permission access.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			log.Error().Msg("no user in request context")
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Unauthorized"})
		}

		subject := CurrentSubject(c)

		// department rules are decided per record by the handler
		if authService.Engine().NeedsTarget(subject, permission.Resource, permission.Action) {
			return c.Next()
		}

		if err := authService.Authorize(subject, permission.Resource, permission.Action, ""); err != nil {
			return Deny(c, err)
		}

		return c.Next()
	}
}

// Deny writes the response for a refused permission check.
func Deny(c *fiber.Ctx, err error) error {
	if errors.Is(err, access.ErrMissingTargetDepartment) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: MsgPermissionDenied})
}
