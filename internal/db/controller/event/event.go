// Package event provides CRUD operations for events.
package event

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrEventNotFound is returned when an event is not found.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventNameEmpty is returned when an event has no name.
	ErrEventNameEmpty = errors.New("event name cannot be empty")
	// ErrEventDateEmpty is returned when an event has no date.
	ErrEventDateEmpty = errors.New("event date cannot be empty")
	// ErrUnknownStatus is returned when filtering by an unknown status.
	ErrUnknownStatus = errors.New("unknown event status")
)

// GetAll returns the events ordered by date, most recent first.
// A non-empty status keeps only events with that status relative to now.
func GetAll(db *gorm.DB, status models.EventStatus, now time.Time) ([]models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if status != "" && !status.Valid() {
		return nil, ErrUnknownStatus
	}

	var events []models.Event
	if err := db.Order("date DESC").Order("id DESC").Find(&events).Error; err != nil {
		return nil, err
	}

	if status == "" {
		return events, nil
	}

	filtered := events[:0]

	for i := range events {
		if events[i].Status(now) == status {
			filtered = append(filtered, events[i])
		}
	}

	return filtered, nil
}

// GetByID returns an event by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var event models.Event

	result := db.First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, result.Error
	}

	return &event, nil
}

// Create stores a new event.
func Create(db *gorm.DB, event *models.Event) error {
	if db == nil {
		return ErrDBNil
	}

	if err := check(event); err != nil {
		return err
	}

	event.ID = 0

	return db.Create(event).Error
}

// Update replaces the editable fields of the event with the given ID.
func Update(db *gorm.DB, id uint64, changes *models.Event) (*models.Event, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := check(changes); err != nil {
		return nil, err
	}

	event, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	event.Name = changes.Name
	event.Date = changes.Date
	event.Description = changes.Description
	event.PhotoURL = changes.PhotoURL

	if err = db.Save(event).Error; err != nil {
		return nil, err
	}

	return event, nil
}

// Delete removes an event together with its attendance records.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Event{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		return nil
	})
}

func check(event *models.Event) error {
	event.Name = strings.TrimSpace(event.Name)

	if event.Name == "" {
		return ErrEventNameEmpty
	}

	if event.Date.IsZero() {
		return ErrEventDateEmpty
	}

	return nil
}
