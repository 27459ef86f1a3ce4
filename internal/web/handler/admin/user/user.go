// Package user provides the account handlers: the secretariat creates pending
// accounts, the staff edits profiles and admins assign roles, toggle and delete accounts.
package user

import (
	"errors"
	"net/url"

	"github.com/dchest/uniuri"
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

const (
	// Path is the base path for user management.
	Path = handler.APIPath + "/users"

	// PasswordPath lets the logged-in account change its password.
	PasswordPath = handler.APIPath + "/account/password"

	// TemporaryPasswordLength is the length of generated passwords.
	TemporaryPasswordLength = 12
)

// Created is the response of a create request. TemporaryPassword is only set
// when the password was generated.
type Created struct {
	User              *models.User `json:"user"`
	TemporaryPassword string       `json:"temporary_password,omitempty"`
}

// PasswordInput is the body of a password change.
type PasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Service provides account management.
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

	perm := func(resource access.Resource, action access.Action) fiber.Handler {
		return auth.RequirePermission(authService, access.Permission{Resource: resource, Action: action})
	}

	// Routes
	app.Get(Path,
		perm(access.ResourceUsers, access.ActionView),
		s.List,
	)
	app.Post(Path,
		perm(access.ResourceUserCreation, access.ActionCreate),
		s.Create,
	)
	app.Put(Path+"/:username",
		perm(access.ResourceUsers, access.ActionUpdate),
		s.Update,
	)
	app.Post(Path+"/:username/role",
		perm(access.ResourceRoleAssignment, access.ActionUpdate),
		s.AssignRole,
	)
	app.Post(Path+"/:username/status",
		perm(access.ResourceRoleAssignment, access.ActionUpdate),
		s.ToggleStatus,
	)
	app.Delete(Path+"/:username",
		perm(access.ResourceRoleAssignment, access.ActionDelete),
		s.Delete,
	)
	app.Post(PasswordPath, s.ChangePassword)
}

// List returns the accounts, pending first. ?status= restricts the result.
func (s *Service) List(c *fiber.Ctx) error {
	status := models.UserStatus(c.Query("status"))

	switch status {
	case "", models.UserStatusPending, models.UserStatusActive, models.UserStatusInactive:
	default:
		return handler.BadRequest(c, ErrUnknownStatus)
	}

	users, err := s.authService.Local().ListUsers(status)
	if err != nil {
		return handler.InternalError(c, err, "failed to list users")
	}

	if users == nil {
		users = []models.User{}
	}

	return c.JSON(users)
}

// Create creates a pending account. A missing password is generated and returned once.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(auth.NewUser)

	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	var generated string

	if in.Password == "" {
		generated = uniuri.NewLen(TemporaryPasswordLength)
		in.Password = generated
	}

	actor, _ := auth.CurrentUser(c)

	user, err := s.authService.Local().CreateUser(*in, actor.Username)
	if err != nil {
		return fail(c, err)
	}

	log.Info().Str("user", user.Username).Str("by", actor.Username).Msg("account created")

	return c.Status(fiber.StatusCreated).JSON(Created{User: user, TemporaryPassword: generated})
}

// AssignRole sets the role of an account and activates it.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return handler.BadRequest(c, err)
	}

	in := new(auth.RoleAssignment)
	if err = c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	actor, _ := auth.CurrentUser(c)

	user, err := s.authService.Local().AssignRole(username, *in, actor.Username)
	if err != nil {
		return fail(c, err)
	}

	log.Info().
		Str("user", user.Username).
		Str("role", user.Role.String()).
		Str("dept", user.Dept).
		Str("by", actor.Username).
		Msg("role assigned")

	return c.JSON(user)
}

// Update changes the profile of an account.
func (s *Service) Update(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return handler.BadRequest(c, err)
	}

	in := new(auth.UserUpdate)
	if err = c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	user, err := s.authService.Local().UpdateUser(username, *in)
	if err != nil {
		return fail(c, err)
	}

	actor, _ := auth.CurrentUser(c)
	log.Info().Str("user", user.Username).Str("by", actor.Username).Msg("account updated")

	return c.JSON(user)
}

// ToggleStatus activates or disables an account.
func (s *Service) ToggleStatus(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return handler.BadRequest(c, err)
	}

	actor, _ := auth.CurrentUser(c)
	if actor.Username == username {
		return handler.BadRequest(c, ErrSelfStatusChange)
	}

	user, err := s.authService.Local().ToggleStatus(username)
	if err != nil {
		return fail(c, err)
	}

	log.Info().Str("user", user.Username).Str("status", string(user.Status)).Msg("account status changed")

	return c.JSON(user)
}

// Delete removes an account.
func (s *Service) Delete(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return handler.BadRequest(c, err)
	}

	actor, _ := auth.CurrentUser(c)

	if err = s.authService.Local().DeleteUser(username, actor.Username); err != nil {
		return fail(c, err)
	}

	log.Info().Str("user", username).Str("by", actor.Username).Msg("account deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// ChangePassword changes the password of the logged-in account.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	actor, ok := auth.CurrentUser(c)
	if !ok {
		return handler.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	in := new(PasswordInput)
	if err := c.BodyParser(in); err != nil {
		return handler.BadRequest(c, err)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.BadRequest(c, err)
	}

	if err := s.authService.Local().ChangePassword(actor.Username, in.OldPassword, in.NewPassword); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func fail(c *fiber.Ctx, err error) error {
	var invalid validator.ValidationErrors

	switch {
	case errors.As(err, &invalid):
		return handler.BadRequest(c, err)
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.NotFound(c, err)
	case errors.Is(err, auth.ErrUserNameExists):
		return handler.Conflict(c, err)
	case errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrInvalidOldPassword),
		errors.Is(err, auth.ErrBirthDateInFuture),
		errors.Is(err, auth.ErrAgeOutOfRange),
		errors.Is(err, auth.ErrDepartmentRequired),
		errors.Is(err, auth.ErrUnknownDepartment),
		errors.Is(err, auth.ErrSelfDelete),
		errors.Is(err, access.ErrInvalidRole):
		return handler.BadRequest(c, err)
	default:
		return handler.InternalError(c, err, "account operation failed")
	}
}
