// Package report computes the attendance reports: per event, over a date
// range and per member.
package report

import (
	"errors"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/event"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/member"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrInvalidRange is returned when the end of a period is before its start.
	ErrInvalidRange = errors.New("end date is before start date")
)

// NotRecorded is the code of a member without attendance record for an event.
const NotRecorded = "N/A"

// Percent is a rate in percent with one decimal.
type Percent float64

// NewPercent returns part / total * 100 with one decimal, or 0 for an empty total.
func NewPercent(part, total int) Percent {
	if total <= 0 {
		return 0
	}

	return Percent(math.Round(float64(part)/float64(total)*1000) / 10) //nolint:mnd
}

// Counts holds the status counters of a report. Rate is Present over Total.
type Counts struct {
	Total    int     `json:"total"`
	Recorded int     `json:"recorded"`
	Present  int     `json:"present"`
	Absent   int     `json:"absent"`
	Excused  int     `json:"excused"`
	Late     int     `json:"late"`
	Rate     Percent `json:"rate"`
}

func (c *Counts) add(status models.AttendanceStatus) {
	c.Recorded++

	switch status {
	case models.AttendancePresent:
		c.Present++
	case models.AttendanceAbsent:
		c.Absent++
	case models.AttendanceExcused:
		c.Excused++
	case models.AttendanceLate:
		c.Late++
	}
}

func (c *Counts) finish(total int) {
	c.Total = total
	c.Rate = NewPercent(c.Present, total)
}

// MemberStatus is the status of one member at the reported event.
type MemberStatus struct {
	MemberID uint64                  `json:"member_id"`
	Name     string                  `json:"name"`
	Dept     string                  `json:"dept"`
	Status   models.AttendanceStatus `json:"status,omitempty"`
	Code     string                  `json:"code"`
}

// EventReport is the attendance of every member at one event.
type EventReport struct {
	Event   models.Event   `json:"event"`
	Members []MemberStatus `json:"members"`
	Counts  Counts         `json:"counts"`
}

// DepartmentSummary is the presence of a department over a period.
// Rate is Present over Members times Events.
type DepartmentSummary struct {
	Department string  `json:"department"`
	Members    int     `json:"members"`
	Events     int     `json:"events"`
	Present    int     `json:"present"`
	Rate       Percent `json:"rate"`
}

// EventSummary is the presence at one event of a period.
type EventSummary struct {
	EventID uint64    `json:"event_id"`
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Members int       `json:"members"`
	Present int       `json:"present"`
	Rate    Percent   `json:"rate"`
}

// GlobalReport summarizes the events of a period by department and by event.
type GlobalReport struct {
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Departments []DepartmentSummary `json:"departments"`
	Events      []EventSummary      `json:"events"`
}

// HistoryEntry is the status of the reported member at one event.
type HistoryEntry struct {
	EventID    uint64                  `json:"event_id"`
	Name       string                  `json:"name"`
	Date       time.Time               `json:"date"`
	Status     models.AttendanceStatus `json:"status,omitempty"`
	Code       string                  `json:"code"`
	RecordedAt *time.Time              `json:"recorded_at,omitempty"`
}

// MemberReport is the attendance history of one member over every event.
type MemberReport struct {
	Member  models.Member  `json:"member"`
	Counts  Counts         `json:"counts"`
	History []HistoryEntry `json:"history"`
}

// ForEvent builds the report of e. Members are listed in the given order and
// the rate is taken over every member, recorded or not.
func ForEvent(e models.Event, members []models.Member, attendances []models.Attendance) EventReport {
	statuses := make(map[uint64]models.AttendanceStatus, len(attendances))
	out := EventReport{Event: e, Members: make([]MemberStatus, 0, len(members))}

	for i := range attendances {
		if attendances[i].EventID != e.ID {
			continue
		}

		statuses[attendances[i].MemberID] = attendances[i].Status
		out.Counts.add(attendances[i].Status)
	}

	for i := range members {
		row := MemberStatus{MemberID: members[i].ID, Name: members[i].Name, Dept: members[i].Dept, Code: NotRecorded}
		if status, ok := statuses[members[i].ID]; ok {
			row.Status = status
			row.Code = status.Code()
		}

		out.Members = append(out.Members, row)
	}

	out.Counts.finish(len(members))

	return out
}

// Global builds the report of the events between from and to, both days included.
// Event days are taken in the location of from. Only attendances of those events are counted.
func Global(from, to time.Time, departments []string, events []models.Event, members []models.Member, attendances []models.Attendance) GlobalReport {
	out := GlobalReport{
		From:        from,
		To:          to,
		Departments: make([]DepartmentSummary, 0, len(departments)),
		Events:      make([]EventSummary, 0),
	}

	inRange := make(map[uint64]bool)

	for i := range events {
		d := day(events[i].Date.In(from.Location()))
		if d.Before(day(from)) || d.After(day(to.In(from.Location()))) {
			continue
		}

		inRange[events[i].ID] = true
		out.Events = append(out.Events, EventSummary{
			EventID: events[i].ID,
			Name:    events[i].Name,
			Date:    events[i].Date,
			Members: len(members),
		})
	}

	owners := make(map[uint64]string, len(members))
	sizes := make(map[string]int, len(departments))

	for i := range members {
		owners[members[i].ID] = members[i].Dept
		sizes[members[i].Dept]++
	}

	presentByDept := make(map[string]int, len(departments))
	presentByEvent := make(map[uint64]int, len(inRange))

	for i := range attendances {
		a := attendances[i]
		if !inRange[a.EventID] || a.Status != models.AttendancePresent {
			continue
		}

		presentByEvent[a.EventID]++

		if dept, ok := owners[a.MemberID]; ok {
			presentByDept[dept]++
		}
	}

	for i := range out.Events {
		out.Events[i].Present = presentByEvent[out.Events[i].EventID]
		out.Events[i].Rate = NewPercent(out.Events[i].Present, out.Events[i].Members)
	}

	for _, dept := range departments {
		out.Departments = append(out.Departments, DepartmentSummary{
			Department: dept,
			Members:    sizes[dept],
			Events:     len(out.Events),
			Present:    presentByDept[dept],
			Rate:       NewPercent(presentByDept[dept], sizes[dept]*len(out.Events)),
		})
	}

	return out
}

// ForMember builds the history of m over events. The rate is taken over every event.
func ForMember(m models.Member, events []models.Event, attendances []models.Attendance) MemberReport {
	records := make(map[uint64]models.Attendance, len(attendances))
	out := MemberReport{Member: m, History: make([]HistoryEntry, 0, len(events))}

	for i := range attendances {
		if attendances[i].MemberID == m.ID {
			records[attendances[i].EventID] = attendances[i]
		}
	}

	for i := range events {
		entry := HistoryEntry{EventID: events[i].ID, Name: events[i].Name, Date: events[i].Date, Code: NotRecorded}

		if a, ok := records[events[i].ID]; ok {
			recordedAt := a.CreatedAt
			entry.Status = a.Status
			entry.Code = a.Status.Code()
			entry.RecordedAt = &recordedAt

			out.Counts.add(a.Status)
		}

		out.History = append(out.History, entry)
	}

	out.Counts.finish(len(events))

	return out
}

// LoadEvent reads the event with id and the records it needs.
func LoadEvent(db *gorm.DB, id uint64) (EventReport, error) {
	if db == nil {
		return EventReport{}, ErrDBNil
	}

	e, err := event.GetByID(db, id)
	if err != nil {
		return EventReport{}, err
	}

	members, err := member.GetAll(db, "")
	if err != nil {
		return EventReport{}, err
	}

	var attendances []models.Attendance
	if err = db.Where("event_id = ?", id).Find(&attendances).Error; err != nil {
		return EventReport{}, err
	}

	return ForEvent(*e, members, attendances), nil
}

// LoadGlobal reads every record and builds the report between from and to.
func LoadGlobal(db *gorm.DB, from, to time.Time) (GlobalReport, error) {
	if db == nil {
		return GlobalReport{}, ErrDBNil
	}

	if day(to.In(from.Location())).Before(day(from)) {
		return GlobalReport{}, ErrInvalidRange
	}

	var (
		departments []string
		members     []models.Member
		attendances []models.Attendance
	)

	events, err := event.GetAll(db, "", time.Now())
	if err != nil {
		return GlobalReport{}, err
	}

	// oldest first, like a calendar
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	if err = db.Model(&models.Department{}).Order("id ASC").Pluck("name", &departments).Error; err != nil {
		return GlobalReport{}, err
	}

	if err = db.Find(&members).Error; err != nil {
		return GlobalReport{}, err
	}

	if err = db.Find(&attendances).Error; err != nil {
		return GlobalReport{}, err
	}

	return Global(from, to, departments, events, members, attendances), nil
}

// LoadMember reads the member with id and builds its history.
func LoadMember(db *gorm.DB, id uint64) (MemberReport, error) {
	if db == nil {
		return MemberReport{}, ErrDBNil
	}

	m, err := member.GetByID(db, id)
	if err != nil {
		return MemberReport{}, err
	}

	events, err := event.GetAll(db, "", time.Now())
	if err != nil {
		return MemberReport{}, err
	}

	var attendances []models.Attendance
	if err = db.Where("member_id = ?", id).Find(&attendances).Error; err != nil {
		return MemberReport{}, err
	}

	return ForMember(*m, events, attendances), nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
