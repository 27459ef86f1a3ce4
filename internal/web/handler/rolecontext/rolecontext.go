// Package rolecontext exposes the acting role of the current session and lets
// admin accounts preview the application as another role.
package rolecontext

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

// Path is the base path of the session routes.
const Path = handler.APIPath + "/session"

// RoleInput is the body of a role switch.
type RoleInput struct {
	Role       access.Role `json:"role"       validate:"required"`
	Department string      `json:"department"`
}

// DepartmentInput is the body of a department switch. An empty department clears the scope.
type DepartmentInput struct {
	Department string `json:"department"`
}

// Service is the session handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post("/role", s.SwitchRole)
		router.Post("/department", s.SwitchDepartment)
	})
}

// Get returns the account, the acting role and the navigation of the session.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	return c.JSON(handler.NewSessionState(s.authService.Engine(), user, auth.CurrentSubject(c)))
}

// SwitchRole changes the acting role.
func (s *Service) SwitchRole(c *fiber.Ctx) error {
	in := new(RoleInput)
	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.BadRequest(c, err)
	}

	return s.apply(c, func(rc *access.RoleContext, user *models.User) error {
		return s.authService.SwitchRole(rc, user, in.Role, in.Department)
	})
}

// SwitchDepartment changes the department scope of the acting responsable role.
func (s *Service) SwitchDepartment(c *fiber.Ctx) error {
	in := new(DepartmentInput)
	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	return s.apply(c, func(rc *access.RoleContext, user *models.User) error {
		return s.authService.SwitchDepartment(rc, user, in.Department)
	})
}

func (s *Service) apply(c *fiber.Ctx, change func(*access.RoleContext, *models.User) error) error {
	user, okUser := auth.CurrentUser(c)
	rc, okRC := auth.CurrentRoleContext(c)

	if !okUser || !okRC {
		return handler.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	err := change(rc, user)

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrRoleSwitchNotAllowed):
		return handler.Error(c, fiber.StatusForbidden, auth.MsgPermissionDenied)
	case errors.Is(err, access.ErrInvalidRole),
		errors.Is(err, access.ErrScopeRequiresResponsable),
		errors.Is(err, auth.ErrUnknownDepartment):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "failed to change acting role")
	}

	subject := rc.Current()
	c.Locals(auth.LocalsRole, subject.Role.String())
	c.Locals(auth.LocalsDepartment, subject.Scope)

	return c.JSON(handler.NewSessionState(s.authService.Engine(), user, subject))
}
