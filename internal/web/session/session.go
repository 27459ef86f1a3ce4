// Package session keeps login sessions and the acting role of each session
// in the configured fiber storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrSessionNotFound is returned when no data is stored for a session ID.
var ErrSessionNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	User models.User
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	if sessionID == "" {
		return ErrSessionNotFound
	}

	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrSessionNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session data and the role context of the session.
func Delete(sessionID string) error {
	return errors.Join(
		Store.Storage.Delete(sessionID),
		Store.Storage.Delete(roleKey(sessionID, access.KeyRole)),
		Store.Storage.Delete(roleKey(sessionID, access.KeyDepartment)),
	)
}

// Init initializes the session store with the provided storage backend.
// A nil storage keeps sessions in process memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// RoleStore persists the role context of one session next to its data.
// It implements access.Store.
type RoleStore struct {
	sessionID string
	exp       time.Duration
}

var _ access.Store = (*RoleStore)(nil)

// NewRoleStore returns the role store of a session. Values expire with the session.
func NewRoleStore(sessionID string, exp time.Duration) *RoleStore {
	return &RoleStore{sessionID: sessionID, exp: exp}
}

// Get implements access.Store. A missing key reads as "".
func (r *RoleStore) Get(key string) (string, error) {
	value, err := Store.Storage.Get(roleKey(r.sessionID, key))
	if err != nil {
		return "", err
	}

	return string(value), nil
}

// Set implements access.Store.
func (r *RoleStore) Set(key, value string) error {
	return Store.Storage.Set(roleKey(r.sessionID, key), []byte(value), r.exp)
}

// Delete implements access.Store.
func (r *RoleStore) Delete(key string) error {
	return Store.Storage.Delete(roleKey(r.sessionID, key))
}

func roleKey(sessionID, key string) string {
	return sessionID + ":" + key
}
