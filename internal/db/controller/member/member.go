// Package member provides CRUD operations for members.
package member

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const deptQueryPattern = "dept = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrMemberNotFound is returned when a member is not found.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMemberNameEmpty is returned when a member has no name.
	ErrMemberNameEmpty = errors.New("member name cannot be empty")
	// ErrMemberDepartmentEmpty is returned when a member has no department.
	ErrMemberDepartmentEmpty = errors.New("member department cannot be empty")
	// ErrUnknownDepartment is returned when the department of a member does not exist.
	ErrUnknownDepartment = errors.New("department does not exist")
)

// GetAll returns every member ordered by name. A non-empty dept restricts the result to that department.
func GetAll(db *gorm.DB, dept string) ([]models.Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Order("name ASC")
	if dept != "" {
		query = query.Where(deptQueryPattern, dept)
	}

	var members []models.Member
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

// GetByID returns a member by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var member models.Member

	result := db.First(&member, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}

		return nil, result.Error
	}

	return &member, nil
}

// Departments maps member IDs to their department.
func Departments(db *gorm.DB) (map[uint64]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []struct {
		ID   uint64
		Dept string
	}

	if err := db.Model(&models.Member{}).Select("id", "dept").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uint64]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Dept
	}

	return out, nil
}

// Create stores a new member. The department must exist.
func Create(db *gorm.DB, member *models.Member) error {
	if db == nil {
		return ErrDBNil
	}

	if err := check(db, member); err != nil {
		return err
	}

	member.ID = 0

	return db.Create(member).Error
}

// Update replaces the editable fields of the member with the given ID.
func Update(db *gorm.DB, id uint64, changes *models.Member) (*models.Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := check(db, changes); err != nil {
		return nil, err
	}

	member, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	member.Name = changes.Name
	member.Dept = changes.Dept
	member.Role = changes.Role
	member.Phone = changes.Phone
	member.Email = changes.Email
	member.BirthDate = changes.BirthDate
	member.Address = changes.Address
	member.Notes = changes.Notes

	if err = db.Save(member).Error; err != nil {
		return nil, err
	}

	return member, nil
}

// Delete removes a member together with its attendance records.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Member{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrMemberNotFound
		}

		return nil
	})
}

func check(db *gorm.DB, member *models.Member) error {
	member.Name = strings.TrimSpace(member.Name)
	member.Dept = strings.TrimSpace(member.Dept)

	if member.Name == "" {
		return ErrMemberNameEmpty
	}

	if member.Dept == "" {
		return ErrMemberDepartmentEmpty
	}

	var count int64
	if err := db.Model(&models.Department{}).Where("name = ?", member.Dept).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return ErrUnknownDepartment
	}

	return nil
}
