// Package attendance records member presence at events.
package attendance

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

const pairQueryPattern = "member_id = ? AND event_id = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrAttendanceNotFound is returned when an attendance record is not found.
	ErrAttendanceNotFound = errors.New("attendance not found")
	// ErrAttendanceExists is returned when the member already has a record for the event.
	ErrAttendanceExists = errors.New("attendance already exists")
	// ErrEventUpcoming is returned when recording attendance for an event that has not started.
	ErrEventUpcoming = errors.New("attendance cannot be recorded for an upcoming event")
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrMemberNotFound is returned when the referenced member does not exist.
	ErrMemberNotFound = errors.New("member not found")
)

// Filter restricts GetAll. Zero fields are ignored.
type Filter struct {
	MemberID uint64
	EventID  uint64
}

// GetAll returns attendance records, newest first.
func GetAll(db *gorm.DB, filter Filter) ([]models.Attendance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Order("id DESC")

	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}

	if filter.EventID != 0 {
		query = query.Where("event_id = ?", filter.EventID)
	}

	var attendances []models.Attendance
	if err := query.Find(&attendances).Error; err != nil {
		return nil, err
	}

	return attendances, nil
}

// GetByID returns an attendance record by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Attendance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var attendance models.Attendance

	result := db.First(&attendance, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}

		return nil, result.Error
	}

	return &attendance, nil
}

// Create records the presence of a member at an event.
// The event must be current or past at now and the pair must not be recorded yet.
func Create(db *gorm.DB, attendance *models.Attendance, now time.Time) error {
	if db == nil {
		return ErrDBNil
	}

	if err := check(db, attendance, now); err != nil {
		return err
	}

	exists, err := pairExists(db, attendance.MemberID, attendance.EventID, 0)
	if err != nil {
		return err
	}

	if exists {
		return ErrAttendanceExists
	}

	attendance.ID = 0
	attendance.Status = models.ParseAttendanceStatus(string(attendance.Status))

	return db.Create(attendance).Error
}

// Update changes member, event, status and notes of a record under the same rules as Create.
func Update(db *gorm.DB, id uint64, changes *models.Attendance, now time.Time) (*models.Attendance, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	attendance, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	if err = check(db, changes, now); err != nil {
		return nil, err
	}

	exists, err := pairExists(db, changes.MemberID, changes.EventID, id)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, ErrAttendanceExists
	}

	attendance.MemberID = changes.MemberID
	attendance.EventID = changes.EventID
	attendance.Status = models.ParseAttendanceStatus(string(changes.Status))
	attendance.Notes = changes.Notes

	if err = db.Save(attendance).Error; err != nil {
		return nil, err
	}

	return attendance, nil
}

// Delete removes an attendance record.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Attendance{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAttendanceNotFound
	}

	return nil
}

func check(db *gorm.DB, attendance *models.Attendance, now time.Time) error {
	var event models.Event
	if err := db.First(&event, attendance.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}

		return err
	}

	if !event.AcceptsAttendance(now) {
		return ErrEventUpcoming
	}

	var members int64
	if err := db.Model(&models.Member{}).Where("id = ?", attendance.MemberID).Count(&members).Error; err != nil {
		return err
	}

	if members == 0 {
		return ErrMemberNotFound
	}

	return nil
}

func pairExists(db *gorm.DB, memberID, eventID, exceptID uint64) (bool, error) {
	query := db.Model(&models.Attendance{}).Where(pairQueryPattern, memberID, eventID)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
