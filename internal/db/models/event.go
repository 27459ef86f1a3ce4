package models

import "time"

// EventStatus classifies an event relative to the current calendar day.
type EventStatus string

const (
	// EventStatusCurrent is an event taking place today.
	EventStatusCurrent EventStatus = "current"
	// EventStatusUpcoming is an event after today.
	EventStatusUpcoming EventStatus = "upcoming"
	// EventStatusPast is an event before today.
	EventStatusPast EventStatus = "past"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	return s == EventStatusCurrent || s == EventStatusUpcoming || s == EventStatusPast
}

// Rank orders statuses for listings: upcoming first, then current, then past.
func (s EventStatus) Rank() int {
	switch s {
	case EventStatusUpcoming:
		return 0
	case EventStatusCurrent:
		return 1
	default:
		return 2 //nolint:mnd
	}
}

// Event is a gathering attendance is recorded for.
type Event struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Description string    `gorm:"type:text" json:"description"`
	PhotoURL    string    `gorm:"size:512" json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Status classifies the event by calendar day in the location of now.
func (e *Event) Status(now time.Time) EventStatus {
	event := calendarDay(e.Date.In(now.Location()))
	today := calendarDay(now)

	switch {
	case event.Equal(today):
		return EventStatusCurrent
	case event.After(today):
		return EventStatusUpcoming
	default:
		return EventStatusPast
	}
}

// AcceptsAttendance reports whether attendance can be recorded: only for current and past events.
func (e *Event) AcceptsAttendance(now time.Time) bool {
	return e.Status(now) != EventStatusUpcoming
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
