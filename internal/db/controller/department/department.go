// Package department provides CRUD operations for departments.
package department

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const (
	nameQueryPattern      = "name = ?"
	lowerNameQueryPattern = "LOWER(name) = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrDepartmentNameEmpty is returned when a department name is empty.
	ErrDepartmentNameEmpty = errors.New("department name cannot be empty")
	// ErrDepartmentExists is returned when a department with the same name, ignoring case, exists.
	ErrDepartmentExists = errors.New("department already exists")
	// ErrDepartmentNotFound is returned when a department is not found.
	ErrDepartmentNotFound = errors.New("department not found")
	// ErrDepartmentHasMembers is returned when deleting a department that still has members.
	ErrDepartmentHasMembers = errors.New("department still has members")
)

// GetAll returns every department ordered by creation.
func GetAll(db *gorm.DB) ([]models.Department, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var departments []models.Department
	if err := db.Order("id ASC").Find(&departments).Error; err != nil {
		return nil, err
	}

	return departments, nil
}

// Names returns the department names ordered by creation.
func Names(db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var names []string
	if err := db.Model(&models.Department{}).Order("id ASC").Pluck("name", &names).Error; err != nil {
		return nil, err
	}

	return names, nil
}

// Get returns the department with the exact name.
func Get(db *gorm.DB, name string) (*models.Department, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrDepartmentNameEmpty
	}

	var department models.Department

	result := db.Where(nameQueryPattern, name).First(&department)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}

		return nil, result.Error
	}

	return &department, nil
}

// Exists reports whether a department with the exact name exists.
func Exists(db *gorm.DB, name string) (bool, error) {
	_, err := Get(db, name)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrDepartmentNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Create adds a department. Names are trimmed and compared case-insensitively.
func Create(db *gorm.DB, name string) (*models.Department, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrDepartmentNameEmpty
	}

	var count int64
	if err := db.Model(&models.Department{}).Where(lowerNameQueryPattern, strings.ToLower(name)).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrDepartmentExists
	}

	department := &models.Department{Name: name}
	if err := db.Create(department).Error; err != nil {
		return nil, err
	}

	return department, nil
}

// Delete removes a department. It is refused while members still belong to it.
func Delete(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrDepartmentNameEmpty
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var members int64
		if err := tx.Model(&models.Member{}).Where("dept = ?", name).Count(&members).Error; err != nil {
			return err
		}

		if members > 0 {
			return ErrDepartmentHasMembers
		}

		result := tx.Where(nameQueryPattern, name).Delete(&models.Department{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrDepartmentNotFound
		}

		return nil
	})
}

// Seed creates the given departments when the table is empty.
// Blank and duplicate names are skipped.
func Seed(db *gorm.DB, names []string) (int, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Department{}).Count(&count).Error; err != nil {
		return 0, err
	}

	if count > 0 {
		return 0, nil
	}

	created := 0

	for _, name := range names {
		_, err := Create(db, name)

		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDepartmentExists), errors.Is(err, ErrDepartmentNameEmpty):
			continue
		default:
			return created, err
		}
	}

	return created, nil
}
