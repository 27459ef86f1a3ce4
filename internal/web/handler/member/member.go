// Package member provides the member handlers. Responsables see and change the
// members of their own department only.
package member

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/member"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the base path for members.
	Path = handler.APIPath + "/members"
)

// Input is the body of create and update requests.
type Input struct {
	Name      string `json:"name"       validate:"required,max=200"`
	Dept      string `json:"dept"       validate:"max=100"`
	Role      string `json:"role"       validate:"max=100"`
	Phone     string `json:"phone"      validate:"max=50"`
	Email     string `json:"email"      validate:"omitempty,email,max=255"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address   string `json:"address"    validate:"max=255"`
	Notes     string `json:"notes"`
}

func (in *Input) model() *models.Member {
	return &models.Member{
		Name:      in.Name,
		Dept:      in.Dept,
		Role:      in.Role,
		Phone:     in.Phone,
		Email:     in.Email,
		BirthDate: in.BirthDate,
		Address:   in.Address,
		Notes:     in.Notes,
	}
}

// Service provides CRUD operations for members.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
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

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	perm := func(action access.Action) fiber.Handler {
		return auth.RequirePermission(authService, access.Permission{Resource: access.ResourceMembers, Action: action})
	}

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, perm(access.ActionView), s.List)
		router.Get("/:id", perm(access.ActionView), s.Get)
		router.Post(handler.RootPath, perm(access.ActionCreate), s.Create)
		router.Put("/:id", perm(access.ActionUpdate), s.Update)
		router.Delete("/:id", perm(access.ActionDelete), s.Delete)
	})
}

// List returns the members visible to the acting role, optionally restricted by ?dept=.
func (s *Service) List(c *fiber.Ctx) error {
	members, err := member.GetAll(s.db, c.Query("dept"))
	if err != nil {
		return handler.InternalError(c, err, "failed to list members")
	}

	return c.JSON(access.FilterDepartmental(members, auth.CurrentSubject(c)))
}

// Get returns one member. Members outside the scope of a responsable are not found.
func (s *Service) Get(c *fiber.Ctx) error {
	m, err := s.load(c)
	if m == nil {
		return err
	}

	return c.JSON(m)
}

// Create adds a member to a department.
func (s *Service) Create(c *fiber.Ctx) error {
	in, ok, err := s.parse(c)
	if !ok {
		return err
	}

	if err = s.authService.Authorize(auth.CurrentSubject(c), access.ResourceMembers, access.ActionCreate, in.Dept); err != nil {
		return auth.Deny(c, err)
	}

	m := in.model()
	if err = member.Create(s.db, m); err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint64("id", m.ID).Str("dept", m.Dept).Msg("member created")

	return c.Status(fiber.StatusCreated).JSON(m)
}

// Update changes a member. Moving a member requires the permission on both departments.
func (s *Service) Update(c *fiber.Ctx) error {
	in, ok, err := s.parse(c)
	if !ok {
		return err
	}

	current, err := s.load(c)
	if current == nil {
		return err
	}

	subject := auth.CurrentSubject(c)

	for _, dept := range []string{current.Dept, in.Dept} {
		if err = s.authService.Authorize(subject, access.ResourceMembers, access.ActionUpdate, dept); err != nil {
			return auth.Deny(c, err)
		}
	}

	updated, err := member.Update(s.db, current.ID, in.model())
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(updated)
}

// Delete removes a member and its attendance records.
func (s *Service) Delete(c *fiber.Ctx) error {
	current, err := s.load(c)
	if current == nil {
		return err
	}

	if err = s.authService.Authorize(auth.CurrentSubject(c), access.ResourceMembers, access.ActionDelete, current.Dept); err != nil {
		return auth.Deny(c, err)
	}

	if err = member.Delete(s.db, current.ID); err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint64("id", current.ID).Str("dept", current.Dept).Msg("member deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// load reads the member of the :id parameter. A nil member means the response was written.
func (s *Service) load(c *fiber.Ctx) (*models.Member, error) {
	id, err := handler.ParamID(c)
	if err != nil {
		return nil, handler.BadRequest(c, err)
	}

	m, err := member.GetByID(s.db, id)
	if err != nil {
		return nil, s.fail(c, err)
	}

	if len(access.FilterDepartmental([]models.Member{*m}, auth.CurrentSubject(c))) == 0 {
		return nil, handler.NotFound(c, member.ErrMemberNotFound)
	}

	return m, nil
}

func (s *Service) parse(c *fiber.Ctx) (*Input, bool, error) {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	// authorization compares the department as it is stored
	in.Name = strings.TrimSpace(in.Name)
	in.Dept = strings.TrimSpace(in.Dept)

	if err := s.validator.Struct(in); err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	return in, true, nil
}

func (s *Service) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, member.ErrMemberNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, member.ErrMemberNameEmpty),
		errors.Is(err, member.ErrMemberDepartmentEmpty),
		errors.Is(err, member.ErrUnknownDepartment):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "member operation failed")
	}
}
