// Package event provides the event handlers.
package event

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
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the base path for events.
	Path = handler.APIPath + "/events"

	// DateLayout is the layout of the date field.
	DateLayout = time.DateOnly
)

// Input is the body of create and update requests.
type Input struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"   validate:"omitempty,url,max=512"`
}

// View is an event with its status at the time of the request.
type View struct {
	models.Event
	Status models.EventStatus `json:"status"`
}

// Service provides CRUD operations for events.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	now       func() time.Time
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
	s.now = time.Now

	perm := func(action access.Action) fiber.Handler {
		return auth.RequirePermission(authService, access.Permission{Resource: access.ResourceEvents, Action: action})
	}

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, perm(access.ActionView), s.List)
		router.Get("/:id", perm(access.ActionView), s.Get)
		router.Post(handler.RootPath, perm(access.ActionCreate), s.Create)
		router.Put("/:id", perm(access.ActionUpdate), s.Update)
		router.Delete("/:id", perm(access.ActionDelete), s.Delete)
	})
}

// List returns the events, optionally filtered by ?status=current|upcoming|past.
func (s *Service) List(c *fiber.Ctx) error {
	now := s.now()

	events, err := event.GetAll(s.db, models.EventStatus(c.Query("status")), now)
	if err != nil {
		return fail(c, err)
	}

	out := make([]View, 0, len(events))
	for i := range events {
		out = append(out, View{Event: events[i], Status: events[i].Status(now)})
	}

	return c.JSON(out)
}

// Get returns one event.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	e, err := event.GetByID(s.db, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(View{Event: *e, Status: e.Status(s.now())})
}

// Create adds an event.
func (s *Service) Create(c *fiber.Ctx) error {
	e, ok, err := s.parse(c)
	if !ok {
		return err
	}

	if err = event.Create(s.db, e); err != nil {
		return fail(c, err)
	}

	log.Info().Uint64("id", e.ID).Str("name", e.Name).Msg("event created")

	return c.Status(fiber.StatusCreated).JSON(View{Event: *e, Status: e.Status(s.now())})
}

// Update changes an event.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	changes, ok, err := s.parse(c)
	if !ok {
		return err
	}

	updated, err := event.Update(s.db, id, changes)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(View{Event: *updated, Status: updated.Status(s.now())})
}

// Delete removes an event and its attendance records.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c)
	if err != nil {
		return handler.BadRequest(c, err)
	}

	if err = event.Delete(s.db, id); err != nil {
		return fail(c, err)
	}

	log.Info().Uint64("id", id).Msg("event deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) parse(c *fiber.Ctx) (*models.Event, bool, error) {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	date, err := time.ParseInLocation(DateLayout, in.Date, s.now().Location())
	if err != nil {
		return nil, false, handler.BadRequest(c, err)
	}

	return &models.Event{
		Name:        in.Name,
		Date:        date,
		Description: in.Description,
		PhotoURL:    in.PhotoURL,
	}, true, nil
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, event.ErrUnknownStatus),
		errors.Is(err, event.ErrEventNameEmpty),
		errors.Is(err, event.ErrEventDateEmpty):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "event operation failed")
	}
}
