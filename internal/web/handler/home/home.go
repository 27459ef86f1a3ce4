// Package home serves the editable blocks of the landing page.
package home

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/homecontent"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the base path of the landing page blocks.
	Path = handler.APIPath + "/home"
)

// Input is the body of an update.
type Input struct {
	Title     string `json:"title"     validate:"max=255"`
	Subtitle  string `json:"subtitle"  validate:"max=255"`
	Content   string `json:"content"`
	Reference string `json:"reference" validate:"max=255"`
	VideoURL  string `json:"video_url" validate:"omitempty,url,max=512"`
	Author    string `json:"author"    validate:"max=200"`
	IsActive  bool   `json:"is_active"`
}

// Service is the landing page handler service.
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
		router.Get(handler.RootPath, auth.RequireSection(authService, access.ResourceHomeContent), s.List)
		// every logged-in account reads the landing page
		router.Get("/:type", s.Get)
		router.Put("/:type",
			auth.RequirePermission(authService, access.Permission{Resource: access.ResourceHomeContent, Action: access.ActionUpdate}),
			s.Put,
		)
	})
}

// List returns every block, active or not.
func (s *Service) List(c *fiber.Ctx) error {
	contents, err := homecontent.GetAll(s.db)
	if err != nil {
		return handler.InternalError(c, err, "failed to list home content")
	}

	return c.JSON(contents)
}

// Get returns the active block of a type.
func (s *Service) Get(c *fiber.Ctx) error {
	content, err := homecontent.Get(s.db, models.HomeContentType(c.Params("type")))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(content)
}

// Put replaces the block of a type.
func (s *Service) Put(c *fiber.Ctx) error {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.BadRequest(c, err)
	}

	actor, _ := auth.CurrentUser(c)

	content, err := homecontent.Set(s.db, &models.HomeContent{
		Type:      models.HomeContentType(c.Params("type")),
		Title:     in.Title,
		Subtitle:  in.Subtitle,
		Content:   in.Content,
		Reference: in.Reference,
		VideoURL:  in.VideoURL,
		Author:    in.Author,
		IsActive:  in.IsActive,
	}, actor.Username)
	if err != nil {
		return fail(c, err)
	}

	log.Info().Str("type", string(content.Type)).Str("by", actor.Username).Msg("home content updated")

	return c.JSON(content)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, homecontent.ErrUnknownType):
		return handler.BadRequest(c, err)
	case errors.Is(err, homecontent.ErrHomeContentNotFound):
		return handler.NotFound(c, err)
	default:
		return handler.InternalError(c, err, "home content operation failed")
	}
}
