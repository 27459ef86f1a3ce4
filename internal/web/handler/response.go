package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/navigation"
)

// ParamID parses the ":id" route parameter.
func ParamID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// Error writes a JSON error body with the given status.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(auth.ErrorResponse{Error: msg})
}

// BadRequest answers 400 with the error text.
func BadRequest(c *fiber.Ctx, err error) error {
	return Error(c, fiber.StatusBadRequest, err.Error())
}

// NotFound answers 404 with the error text.
func NotFound(c *fiber.Ctx, err error) error {
	return Error(c, fiber.StatusNotFound, err.Error())
}

// Conflict answers 409 with the error text.
func Conflict(c *fiber.Ctx, err error) error {
	return Error(c, fiber.StatusConflict, err.Error())
}

// InternalError logs err and answers 500 without details.
func InternalError(c *fiber.Ctx, err error, msg string) error {
	log.Error().Err(err).Str("path", c.Path()).Msg(msg)
	return Error(c, fiber.StatusInternalServerError, "Internal Server Error")
}

// SessionState describes the logged-in account and its acting role.
type SessionState struct {
	User     *models.User      `json:"user"`
	Subject  access.Subject    `json:"subject"`
	HomePage string            `json:"home_page"`
	Menu     []navigation.Item `json:"menu"`
}

// NewSessionState builds the state of a session for subject.
func NewSessionState(engine *access.Engine, user *models.User, subject access.Subject) SessionState {
	return SessionState{
		User:     user,
		Subject:  subject,
		HomePage: navigation.HomePage(subject.Role),
		Menu:     navigation.Menu(engine, subject.Role),
	}
}
