// Package dashboard provides the dashboard handler with the attendance figures
// visible to the acting role.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/stats"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
)

const (
	// Path is the path to the dashboard route.
	Path = handler.APIPath + "/dashboard"
)

// Data represents the complete dashboard data.
type Data struct {
	Subject  access.Subject    `json:"subject"`
	Sections []access.Resource `json:"sections"`
	Stats    stats.Dashboard   `json:"stats"`
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	// register routes with permission checks
	app.Get(Path,
		auth.RequireSection(authService, access.ResourceDashboard),
		s.Get,
	)
}

// Get returns the dashboard of the acting role.
func (s *Service) Get(c *fiber.Ctx) error {
	subject := auth.CurrentSubject(c)

	dashboard, err := stats.Load(s.db, subject)
	if err != nil {
		return handler.InternalError(c, err, "failed to load dashboard")
	}

	log.Debug().
		Str("role", subject.Role.String()).
		Str("scope", subject.Scope).
		Int("members", dashboard.Members).
		Int("attendances", dashboard.Attendances).
		Msg("dashboard computed")

	return c.JSON(Data{
		Subject:  subject,
		Sections: s.authService.VisibleSections(subject.Role),
		Stats:    dashboard,
	})
}
