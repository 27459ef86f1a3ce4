// Package stats computes the dashboard figures.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/access"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Rate is a presence rate in percent.
type Rate int

// String formats the rate like "75 %".
func (r Rate) String() string {
	return fmt.Sprintf("%d %%", int(r))
}

// MarshalText renders the formatted rate in JSON.
func (r Rate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// DepartmentRate is the presence rate of the members of one department.
type DepartmentRate struct {
	Department string `json:"department"`
	Rate       Rate   `json:"rate"`
	Records    int    `json:"records"`
}

// Dashboard holds the counters shown on the dashboard.
type Dashboard struct {
	Members      int              `json:"members"`
	Departments  int              `json:"departments"`
	Events       int              `json:"events"`
	Attendances  int              `json:"attendances"`
	PresenceRate Rate             `json:"presence_rate"`
	ByDepartment []DepartmentRate `json:"by_department"`
}

// PresenceRate returns round(present / total * 100), or 0 for no records.
func PresenceRate(attendances []models.Attendance) Rate {
	if len(attendances) == 0 {
		return 0
	}

	present := 0

	for i := range attendances {
		if attendances[i].Status == models.AttendancePresent {
			present++
		}
	}

	return Rate(math.Round(float64(present) / float64(len(attendances)) * 100)) //nolint:mnd
}

// Compute builds the dashboard from already loaded records.
// The figures are restricted to what subject may see.
func Compute(subject access.Subject, departments []string, members []models.Member, events int, attendances []models.Attendance) Dashboard {
	members = access.FilterDepartmental(members, subject)
	departments = access.FilterVisible(departments, subject, func(name string) (string, bool) {
		return name, true
	})

	owners := make(map[uint64]string, len(members))
	for i := range members {
		owners[members[i].ID] = members[i].Dept
	}

	attendances = access.FilterOwned(attendances, subject, memberOf, owners)

	byDepartment := make(map[string][]models.Attendance, len(departments))
	for i := range attendances {
		dept := owners[attendances[i].MemberID]
		byDepartment[dept] = append(byDepartment[dept], attendances[i])
	}

	out := Dashboard{
		Members:      len(members),
		Departments:  len(departments),
		Events:       events,
		Attendances:  len(attendances),
		PresenceRate: PresenceRate(attendances),
		ByDepartment: make([]DepartmentRate, 0, len(departments)),
	}

	for _, dept := range departments {
		out.ByDepartment = append(out.ByDepartment, DepartmentRate{
			Department: dept,
			Rate:       PresenceRate(byDepartment[dept]),
			Records:    len(byDepartment[dept]),
		})
	}

	return out
}

// Load reads members, departments, events and attendances and computes the dashboard for subject.
func Load(db *gorm.DB, subject access.Subject) (Dashboard, error) {
	if db == nil {
		return Dashboard{}, ErrDBNil
	}

	var (
		departments []string
		members     []models.Member
		attendances []models.Attendance
		events      int64
	)

	if err := db.Model(&models.Department{}).Order("id ASC").Pluck("name", &departments).Error; err != nil {
		return Dashboard{}, err
	}

	if err := db.Find(&members).Error; err != nil {
		return Dashboard{}, err
	}

	if err := db.Model(&models.Event{}).Count(&events).Error; err != nil {
		return Dashboard{}, err
	}

	if err := db.Find(&attendances).Error; err != nil {
		return Dashboard{}, err
	}

	return Compute(subject, departments, members, int(events), attendances), nil
}

func memberOf(a models.Attendance) uint64 {
	return a.MemberID
}
