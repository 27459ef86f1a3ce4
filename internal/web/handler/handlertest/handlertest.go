// Package handlertest wires an in-memory application for handler tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
	authmw "github.com/AttendanceAdmin/AttendanceAdmin/internal/web/middleware/auth"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/web/session"
)

// Departments are created in every test database.
var Departments = []string{"Chorale", "Intercession", "Accueil", "Médias", "DLB", "DCC", "DFF"} //nolint:gochecknoglobals

// Storage is a minimal in-memory implementation of fiber.Storage for tests.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ fiber.Storage = (*Storage)(nil)

// Get implements fiber.Storage.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set implements fiber.Storage.
func (s *Storage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

// Delete implements fiber.Storage.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset implements fiber.Storage.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

// Keys returns the stored keys.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}

	return keys
}

// Close implements fiber.Storage.
func (s *Storage) Close() error { return nil }

// Env is an application with database, sessions and auth service.
type Env struct {
	App     *fiber.App
	DB      *gorm.DB
	Cfg     *config.Config
	Auth    *auth.Service
	Storage *Storage
}

// New returns an Env whose app already runs the session middleware.
func New(t *testing.T) *Env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Member{},
		&models.Event{},
		&models.Attendance{},
		&models.HomeContent{},
	))

	for _, name := range Departments {
		require.NoError(t, db.Create(&models.Department{Name: name}).Error)
	}

	storage := &Storage{data: make(map[string][]byte)}
	session.Init(storage)

	cfg := &config.Config{
		DevMode: true,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Access: config.Access{EventsViewableByAllRoles: true},
	}

	authService, err := auth.NewService(db, access.NewEngine(cfg.Access.EngineOptions()))
	require.NoError(t, err)

	app := fiber.New()
	app.Use(authmw.New(authService, cfg.Webserver.Session.ExpiryTime))

	return &Env{
		App:     app,
		DB:      db,
		Cfg:     cfg,
		Auth:    authService,
		Storage: storage,
	}
}

// CreateUser stores an active account. The password hash is computed once per call.
func (e *Env) CreateUser(t *testing.T, username, password string, role access.Role, dept string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Name:     username,
		Password: models.HashPassword(password),
		Role:     role,
		Dept:     dept,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, e.DB.Create(user).Error)

	return user
}

// Login opens a session for user without going through the login route
// and returns the session ID.
func (e *Env) Login(t *testing.T, user *models.User) string {
	t.Helper()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)

	require.NoError(t, (&session.Data{User: *user}).Write(sessionID, time.Minute))

	rc, err := e.Auth.RoleContext(session.NewRoleStore(sessionID, time.Minute))
	require.NoError(t, err)
	require.NoError(t, e.Auth.StartSession(rc, user))

	return sessionID
}

// LoginAs creates an account with role and dept and logs it in.
func (e *Env) LoginAs(t *testing.T, role access.Role, dept string) string {
	t.Helper()

	return e.Login(t, e.CreateUser(t, string(role)+"-"+dept, "password", role, dept))
}

// Do sends a request with an optional JSON body and session and returns status and body.
func (e *Env) Do(t *testing.T, method, target string, body any, sessionID string) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, out
}

// Decode unmarshals a JSON body into v.
func Decode(t *testing.T, body []byte, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(body, v), string(body))
}
