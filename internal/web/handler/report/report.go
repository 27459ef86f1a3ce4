// Package report serves the attendance reports to the staff.
package report

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/event"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/member"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/report"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the base path for reports.
	Path = handler.APIPath + "/reports"
)

// Period is the query of the global report, both days included.
type Period struct {
	From string `query:"from" validate:"required,datetime=2006-01-02"`
	To   string `query:"to"   validate:"required,datetime=2006-01-02"`
}

// Service serves the reports.
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

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequireSection(authService, access.ResourceReports))
		router.Get("/events/:id", s.Event)
		router.Get("/global", s.Global)
		router.Get("/members/:id", s.Member)
	})
}

// Event returns the attendance of every member at one event.
func (s *Service) Event(c *fiber.Ctx) error {
	id, err := handler.ParamID(c)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	out, err := report.LoadEvent(s.db, id)
	if err != nil {
		return fail(c, err)
	}

	log.Debug().Uint64("event", id).Int("present", out.Counts.Present).Msg("event report computed")

	return c.JSON(out)
}

// Global returns the report of the events between ?from= and ?to=.
func (s *Service) Global(c *fiber.Ctx) error {
	period := new(Period)

	if err := c.QueryParser(period); err != nil {
		return handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(period); err != nil {
		return handler.BadRequest(c, err)
	}

	from, err := time.ParseInLocation(time.DateOnly, period.From, time.Local)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	to, err := time.ParseInLocation(time.DateOnly, period.To, time.Local)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	out, err := report.LoadGlobal(s.db, from, to)
	if err != nil {
		return fail(c, err)
	}

	log.Debug().Str("from", period.From).Str("to", period.To).Int("events", len(out.Events)).Msg("global report computed")

	return c.JSON(out)
}

// Member returns the attendance history of one member.
func (s *Service) Member(c *fiber.Ctx) error {
	id, err := handler.ParamID(c)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	out, err := report.LoadMember(s.db, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(out)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, member.ErrMemberNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, report.ErrInvalidRange):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "report failed")
	}
}
