package daemon

import (
	"github.com/dchest/uniuri"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/config"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/department"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const (
	initialAdmin          = "admin"
	initialPasswordLength = 16
)

// seed creates the default departments and, on an empty user table, an admin account
// with a random password that is logged once.
func seed(cfg *config.Config, db *gorm.DB) error {
	created, err := department.Seed(db, cfg.Access.DefaultDepartments)
	if err != nil {
		return err
	}

	if created > 0 {
		log.Info().Int("count", created).Msg("default departments created")
	}

	var count int64
	if err = db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	password := uniuri.NewLen(initialPasswordLength)

	if err = db.Create(&models.User{
		Username:       initialAdmin,
		Name:           "Administrator",
		Password:       models.HashPassword(password),
		Role:           access.RoleAdmin,
		Status:         models.UserStatusActive,
		RoleAssignedBy: initialAdmin,
	}).Error; err != nil {
		return err
	}

	log.Warn().
		Str("user", initialAdmin).
		Str("password", password).
		Msg("initial admin account created, change its password")

	return nil
}
