// Package attendance provides the attendance handlers. A record belongs to the
// department of its member.
package attendance

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/attendance"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/member"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the base path for attendance records.
	Path = handler.APIPath + "/attendances"
)

// Input is the body of create and update requests.
// Status accepts a stored status or a display code (P, A, AJ, L).
type Input struct {
	MemberID uint64 `json:"member_id" validate:"required"`
	EventID  uint64 `json:"event_id"  validate:"required"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

// View is a record with the display code of its status.
type View struct {
	models.Attendance
	Code string `json:"code"`
}

func newView(a *models.Attendance) View {
	return View{Attendance: *a, Code: a.Status.Code()}
}

// Service provides CRUD operations for attendance records.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
	now         func() time.Time
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
	s.now = time.Now

	perm := func(action access.Action) fiber.Handler {
		return auth.RequirePermission(authService, access.Permission{Resource: access.ResourceAttendances, Action: action})
	}

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, perm(access.ActionView), s.List)
		router.Post(handler.RootPath, perm(access.ActionCreate), s.Create)
		router.Put("/:id", perm(access.ActionUpdate), s.Update)
		router.Delete("/:id", perm(access.ActionDelete), s.Delete)
	})
}

// List returns the records visible to the acting role, optionally filtered by ?member_id= and ?event_id=.
func (s *Service) List(c *fiber.Ctx) error {
	var filter attendance.Filter

	for key, dst := range map[string]*uint64{"member_id": &filter.MemberID, "event_id": &filter.EventID} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return handler.BadRequest(c, err)
		}

		*dst = id
	}

	records, err := attendance.GetAll(s.db, filter)
	if err != nil {
		return handler.InternalError(c, err, "failed to list attendances")
	}

	owners, err := member.Departments(s.db)
	if err != nil {
		return handler.InternalError(c, err, "failed to load member departments")
	}

	records = access.FilterOwned(records, auth.CurrentSubject(c), memberOf, owners)

	out := make([]View, 0, len(records))
	for i := range records {
		out = append(out, newView(&records[i]))
	}

	return c.JSON(out)
}

// Create records the presence of a member at an event.
func (s *Service) Create(c *fiber.Ctx) error {
	in, ok, err := s.parse(c)
	if !ok {
		return err
	}

	user, _ := auth.CurrentUser(c)

	dept, ok, err := s.department(c, in.MemberID)
	if !ok {
		return err
	}

	if err = s.authService.Authorize(auth.CurrentSubject(c), access.ResourceAttendances, access.ActionCreate, dept); err != nil {
		return auth.Deny(c, err)
	}

	record := &models.Attendance{
		MemberID:  in.MemberID,
		EventID:   in.EventID,
		Status:    models.AttendanceStatus(in.Status),
		Notes:     in.Notes,
		CreatedBy: user.Username,
	}

	if err = attendance.Create(s.db, record, s.now()); err != nil {
		return fail(c, err)
	}

	log.Info().
		Uint64("member", record.MemberID).
		Uint64("event", record.EventID).
		Str("status", string(record.Status)).
		Msg("attendance recorded")

	return c.Status(fiber.StatusCreated).JSON(newView(record))
}

// Update changes a record. Moving it to another member requires the permission on both departments.
func (s *Service) Update(c *fiber.Ctx) error {
	in, ok, err := s.parse(c)
	if !ok {
		return err
	}

	current, ok, err := s.load(c)
	if !ok {
		return err
	}

	subject := auth.CurrentSubject(c)

	for _, memberID := range []uint64{current.MemberID, in.MemberID} {
		dept, found, errDept := s.department(c, memberID)
		if !found {
			return errDept
		}

		if err = s.authService.Authorize(subject, access.ResourceAttendances, access.ActionUpdate, dept); err != nil {
			return auth.Deny(c, err)
		}
	}

	updated, err := attendance.Update(s.db, current.ID, &models.Attendance{
		MemberID: in.MemberID,
		EventID:  in.EventID,
		Status:   models.AttendanceStatus(in.Status),
		Notes:    in.Notes,
	}, s.now())
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(newView(updated))
}

// Delete removes a record.
func (s *Service) Delete(c *fiber.Ctx) error {
	current, ok, err := s.load(c)
	if !ok {
		return err
	}

	dept, ok, err := s.department(c, current.MemberID)
	if !ok {
		return err
	}

	if err = s.authService.Authorize(auth.CurrentSubject(c), access.ResourceAttendances, access.ActionDelete, dept); err != nil {
		return auth.Deny(c, err)
	}

	if err = attendance.Delete(s.db, current.ID); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// load reads the record of the :id parameter. Records hidden from the acting role are not found.
func (s *Service) load(c *fiber.Ctx) (*models.Attendance, bool, error) {
	id, err := handler.ParamID(c)
	if err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	record, err := attendance.GetByID(s.db, id)
	if err != nil {
		return nil, false, fail(c, err)
	}

	owners, err := member.Departments(s.db)
	if err != nil {
		return nil, false, handler.InternalError(c, err, "failed to load member departments")
	}

	if len(access.FilterOwned([]models.Attendance{*record}, auth.CurrentSubject(c), memberOf, owners)) == 0 {
		return nil, false, handler.NotFound(c, attendance.ErrAttendanceNotFound)
	}

	return record, true, nil
}

// department resolves the department owning the records of a member.
func (s *Service) department(c *fiber.Ctx, memberID uint64) (string, bool, error) {
	m, err := member.GetByID(s.db, memberID)

	switch {
	case err == nil:
		return m.Dept, true, nil
	case errors.Is(err, member.ErrMemberNotFound):
		return "", false, handler.BadRequest(c, attendance.ErrMemberNotFound)
	default:
		return "", false, handler.InternalError(c, err, "failed to load member")
	}
}

func (s *Service) parse(c *fiber.Ctx) (*Input, bool, error) {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	return in, true, nil
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, attendance.ErrAttendanceExists):
		return handler.Conflict(c, err)
	case errors.Is(err, attendance.ErrEventUpcoming):
		return handler.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, attendance.ErrEventNotFound), errors.Is(err, attendance.ErrMemberNotFound):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "attendance operation failed")
	}
}

func memberOf(a models.Attendance) uint64 {
	return a.MemberID
}
