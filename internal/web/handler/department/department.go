// Package department provides the department handlers.
//
// Managing departments is reserved to the admin role. The names route serves
// the department list read-only to every logged-in account, e.g. for member forms.
package department

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/department"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the base path for departments.
	Path = handler.APIPath + "/departments"
	// NamesPath lists department names for every logged-in account.
	NamesPath = Path + "/names"
)

// Input is the body of a create request.
type Input struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Service provides operations on departments.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	perm := func(action access.Action) fiber.Handler {
		return auth.RequirePermission(authService, access.Permission{Resource: access.ResourceDepartments, Action: action})
	}

	// no engine check: the session middleware already requires a login
	app.Get(NamesPath, s.Names)

	app.Get(Path, perm(access.ActionView), s.List)
	app.Post(Path, perm(access.ActionCreate), s.Create)
	app.Delete(Path+"/:name", perm(access.ActionDelete), s.Delete)
}

// Names returns the department names.
func (s *Service) Names(c *fiber.Ctx) error {
	names, err := department.Names(s.db)
	if err != nil {
		return handler.InternalError(c, err, "failed to list department names")
	}

	if names == nil {
		names = []string{}
	}

	return c.JSON(names)
}

// List returns all departments.
func (s *Service) List(c *fiber.Ctx) error {
	departments, err := department.GetAll(s.db)
	if err != nil {
		return handler.InternalError(c, err, "failed to list departments")
	}

	return c.JSON(departments)
}

// Create adds a department.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.BadRequest(c, err)
	}

	created, err := department.Create(s.db, in.Name)
	if err != nil {
		return fail(c, err)
	}

	log.Info().Str("department", created.Name).Msg("department created")

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Delete removes a department without members.
func (s *Service) Delete(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return handler.BadRequest(c, err)
	}

	if err = department.Delete(s.db, name); err != nil {
		return fail(c, err)
	}

	log.Info().Str("department", name).Msg("department deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, department.ErrDepartmentExists), errors.Is(err, department.ErrDepartmentHasMembers):
		return handler.Conflict(c, err)
	case errors.Is(err, department.ErrDepartmentNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, department.ErrDepartmentNameEmpty):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "department operation failed")
	}
}
