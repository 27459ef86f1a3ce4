package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const (
	// MinPasswordLength is the minimal length of a new password.
	MinPasswordLength = 6
	// MinAge is the minimal age of a new account holder.
	MinAge = 16
	// MaxAge is the maximal plausible age of a new account holder.
	MaxAge = 100

	birthDateLayout = "2006-01-02"

	whereUsername = "username = ?"
)

// NewUser holds the fields the secretariat fills to create an account.
type NewUser struct {
	Username  string `json:"username"   validate:"required,max=100"`
	Name      string `json:"name"       validate:"required,max=200"`
	Email     string `json:"email"      validate:"required,email"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Address   string `json:"address"    validate:"required"`
	Password  string `json:"password"   validate:"required"`
}

// RoleAssignment holds the fields an admin fills to activate an account.
type RoleAssignment struct {
	Role  access.Role `json:"role"`
	Dept  string      `json:"dept"`
	Notes string      `json:"notes"`
}

// UserUpdate holds the profile fields of an account. Role, department and
// status are changed through AssignRole and ToggleStatus only.
type UserUpdate struct {
	Name      string `json:"name"       validate:"required,max=200"`
	Email     string `json:"email"      validate:"required,email"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address   string `json:"address"    validate:"max=255"`
}

// LocalProvider handles local database accounts.
type LocalProvider struct {
	db       *gorm.DB
	validate *validator.Validate
	now      func() time.Time
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db:       db,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Authenticate authenticates a user against the local database.
// Only active accounts with an assigned role may log in.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	user, err := p.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	if !user.Active() {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if !user.Role.Valid() {
		return nil, ErrNoRoleAssigned
	}

	return user, nil
}

// CreateUser creates a pending account without role.
func (p *LocalProvider) CreateUser(in NewUser, createdBy string) (*models.User, error) {
	if p.db == nil {
		return nil, ErrDBNil
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	if err := p.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if err := p.checkBirthDate(in.BirthDate); err != nil {
		return nil, err
	}

	var existing int64
	if err := p.db.Model(&models.User{}).Where(whereUsername, in.Username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if existing > 0 {
		return nil, ErrUserNameExists
	}

	user := models.User{
		Username:  in.Username,
		Name:      in.Name,
		Email:     in.Email,
		Password:  models.HashPassword(in.Password),
		Status:    models.UserStatusPending,
		BirthDate: in.BirthDate,
		Address:   in.Address,
		CreatedBy: createdBy,
	}

	if err := p.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// AssignRole sets the role of an account and activates it.
// The department is kept for responsable only and must exist.
func (p *LocalProvider) AssignRole(username string, in RoleAssignment, assignedBy string) (*models.User, error) {
	role, err := access.ParseRole(string(in.Role))
	if err != nil {
		return nil, err
	}

	in.Dept = strings.TrimSpace(in.Dept)

	if role != access.RoleResponsable {
		in.Dept = ""
	}

	if role == access.RoleResponsable {
		if in.Dept == "" {
			return nil, ErrDepartmentRequired
		}

		var count int64
		if err = p.db.Model(&models.Department{}).Where("name = ?", in.Dept).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check department: %w", err)
		}

		if count == 0 {
			return nil, ErrUnknownDepartment
		}
	}

	user, err := p.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.Dept = in.Dept
	user.Status = models.UserStatusActive
	user.RoleAssignedBy = assignedBy
	user.Notes = strings.TrimSpace(in.Notes)

	if err = p.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	return user, nil
}

// UpdateUser changes the profile of an account. An empty birth date clears it.
func (p *LocalProvider) UpdateUser(username string, in UserUpdate) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Address = strings.TrimSpace(in.Address)

	if err := p.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if in.BirthDate != "" {
		if err := p.checkBirthDate(in.BirthDate); err != nil {
			return nil, err
		}
	}

	user, err := p.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Email = in.Email
	user.BirthDate = in.BirthDate
	user.Address = in.Address

	if err = p.db.Model(user).Select("name", "email", "birth_date", "address").Updates(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ToggleStatus switches an account between active and inactive. A pending account becomes active.
func (p *LocalProvider) ToggleStatus(username string) (*models.User, error) {
	user, err := p.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	if user.Status == models.UserStatusActive {
		user.Status = models.UserStatusInactive
	} else {
		user.Status = models.UserStatusActive
	}

	if err = p.db.Model(user).Update("status", user.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return user, nil
}

// ChangePassword changes a user's password.
func (p *LocalProvider) ChangePassword(username, oldPassword, newPassword string) error {
	user, err := p.GetUserByUsername(username)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	return p.db.Model(user).Update("password", models.HashPassword(newPassword)).Error
}

// DeleteUser removes an account. Nobody deletes their own account.
func (p *LocalProvider) DeleteUser(username, actor string) error {
	if username == actor {
		return ErrSelfDelete
	}

	result := p.db.Where(whereUsername, username).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetUserByUsername retrieves a user by username.
func (p *LocalProvider) GetUserByUsername(username string) (*models.User, error) {
	if p.db == nil {
		return nil, ErrDBNil
	}

	var user models.User

	err := p.db.Where(whereUsername, username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers lists users, optionally by status. Pending accounts come first.
func (p *LocalProvider) ListUsers(status models.UserStatus) ([]models.User, error) {
	if p.db == nil {
		return nil, ErrDBNil
	}

	query := p.db.Model(&models.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var users []models.User
	if err := query.
		Order(clauseStatusPendingFirst).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

const clauseStatusPendingFirst = "CASE WHEN status = 'pending' THEN 0 ELSE 1 END"

func (p *LocalProvider) checkBirthDate(value string) error {
	birth, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return fmt.Errorf("invalid birth date: %w", err)
	}

	now := p.now()
	if birth.After(now) {
		return ErrBirthDateInFuture
	}

	age := Age(birth, now)
	if age < MinAge || age > MaxAge {
		return ErrAgeOutOfRange
	}

	return nil
}

// Age returns the age in full years at now.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()

	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}

	return age
}
