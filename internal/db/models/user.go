package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	// UserStatusPending is an account created by the secretariat that still waits for a role.
	UserStatusPending UserStatus = "pending"
	// UserStatusActive is an account that can log in.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive is a disabled account.
	UserStatusInactive UserStatus = "inactive"
)

// User represents an account of the application.
// The Role of the account is the role its sessions start with.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null" json:"username"`
	// Name is the display name.
	Name string `gorm:"size:200" json:"name"`
	// Email is the user's email address.
	Email string `gorm:"size:255" json:"email"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// Role is the account role. It is empty until an admin assigns one.
	Role access.Role `gorm:"type:varchar(20)" json:"role"`
	// Dept is the department of a responsable account.
	Dept string `gorm:"size:100" json:"dept"`
	// Status tells whether the account may log in.
	Status    UserStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	BirthDate string     `gorm:"size:10" json:"birth_date"`
	Address   string     `gorm:"size:255" json:"address"`
	Notes     string     `gorm:"type:text" json:"notes"`
	// CreatedBy is the username of the account that created this one.
	CreatedBy string `gorm:"size:100" json:"created_by"`
	// RoleAssignedBy is the username of the admin that assigned the current role.
	RoleAssignedBy string    `gorm:"size:100" json:"role_assigned_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u.Status == UserStatusActive
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// It uses the default Argon2id parameters.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
