package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/handler"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/session"
)

const (
	// Path is the path of the login route.
	Path = handler.APIPath + "/login"
)

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.validator = validator.New()

	app.Post(Path, s.Post)
}

// Post handles the login request.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(Credentials)

	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData)
	}

	user, err := s.authService.Local().Authenticate(in.Username, in.Password)

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		log.Info().Str("user", in.Username).Msg("login failed")
		return handler.Error(c, fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUserAccountDisabled), errors.Is(err, auth.ErrNoRoleAssigned):
		log.Info().Str("user", in.Username).Err(err).Msg("login refused")
		return handler.Error(c, fiber.StatusForbidden, ErrAccountNotActive.Error())
	default:
		return handler.InternalError(c, err, "failed to authenticate")
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return handler.InternalError(c, err, "failed to generate session ID")
	}

	expiry := s.cfg.Webserver.Session.ExpiryTime

	userSession := &session.Data{
		User: *user,
	}

	if err = userSession.Write(sessionID, expiry); err != nil {
		return handler.InternalError(c, err, "failed to write session")
	}

	rc, err := s.authService.RoleContext(session.NewRoleStore(sessionID, expiry))
	if err != nil {
		return handler.InternalError(c, err, "failed to open role context")
	}

	if err = s.authService.StartSession(rc, user); err != nil {
		return handler.InternalError(c, err, "failed to start session")
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(expiry.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Str("user", user.Username).Str("role", user.Role.String()).Msg("login")

	return c.JSON(handler.NewSessionState(s.authService.Engine(), user, rc.Current()))
}
