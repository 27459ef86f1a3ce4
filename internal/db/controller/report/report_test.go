package report

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/event"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/controller/member"
	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return t
}

func TestNewPercent(t *testing.T) {
	assert.Equal(t, Percent(0), NewPercent(3, 0))
	assert.Equal(t, Percent(66.7), NewPercent(2, 3))
	assert.Equal(t, Percent(100), NewPercent(4, 4))
	assert.Equal(t, Percent(12.5), NewPercent(1, 8))
}

func TestForEvent(t *testing.T) {
	e := models.Event{ID: 1, Name: "Culte", Date: date("2026-03-01")}
	members := []models.Member{
		{ID: 1, Name: "Alice", Dept: "DLB"},
		{ID: 2, Name: "Bob", Dept: "DLB"},
		{ID: 3, Name: "Chloé", Dept: "DCC"},
		{ID: 4, Name: "David", Dept: "DCC"},
	}
	attendances := []models.Attendance{
		{MemberID: 1, EventID: 1, Status: models.AttendancePresent},
		{MemberID: 2, EventID: 1, Status: models.AttendanceAbsent},
		{MemberID: 3, EventID: 1, Status: models.AttendanceExcused},
		// other event
		{MemberID: 4, EventID: 2, Status: models.AttendancePresent},
	}

	got := ForEvent(e, members, attendances)

	assert.Equal(t, Counts{Total: 4, Recorded: 3, Present: 1, Absent: 1, Excused: 1, Rate: 25}, got.Counts)
	require.Len(t, got.Members, 4)
	assert.Equal(t, "P", got.Members[0].Code)
	assert.Equal(t, "A", got.Members[1].Code)
	assert.Equal(t, "AJ", got.Members[2].Code)
	assert.Equal(t, NotRecorded, got.Members[3].Code)
	assert.Empty(t, got.Members[3].Status)
}

func TestForEvent_NoMembers(t *testing.T) {
	got := ForEvent(models.Event{ID: 1}, nil, nil)

	assert.Equal(t, Percent(0), got.Counts.Rate)
	assert.Empty(t, got.Members)
}

func TestGlobal(t *testing.T) {
	events := []models.Event{
		{ID: 1, Name: "Culte 1", Date: date("2026-03-01")},
		{ID: 2, Name: "Culte 2", Date: date("2026-03-08")},
		{ID: 3, Name: "Culte 3", Date: date("2026-04-05")},
	}
	members := []models.Member{
		{ID: 1, Name: "Alice", Dept: "DLB"},
		{ID: 2, Name: "Bob", Dept: "DLB"},
		{ID: 3, Name: "Chloé", Dept: "DCC"},
	}
	attendances := []models.Attendance{
		{MemberID: 1, EventID: 1, Status: models.AttendancePresent},
		{MemberID: 2, EventID: 1, Status: models.AttendancePresent},
		{MemberID: 3, EventID: 1, Status: models.AttendanceAbsent},
		{MemberID: 1, EventID: 2, Status: models.AttendancePresent},
		{MemberID: 3, EventID: 2, Status: models.AttendanceLate},
		// outside the period
		{MemberID: 3, EventID: 3, Status: models.AttendancePresent},
	}

	got := Global(date("2026-03-01"), date("2026-03-31"), []string{"DLB", "DCC", "Chorale"}, events, members, attendances)

	require.Len(t, got.Events, 2)
	assert.Equal(t, EventSummary{EventID: 1, Name: "Culte 1", Date: date("2026-03-01"), Members: 3, Present: 2, Rate: 66.7}, got.Events[0])
	assert.Equal(t, EventSummary{EventID: 2, Name: "Culte 2", Date: date("2026-03-08"), Members: 3, Present: 1, Rate: 33.3}, got.Events[1])

	assert.Equal(t, []DepartmentSummary{
		{Department: "DLB", Members: 2, Events: 2, Present: 3, Rate: 75},
		{Department: "DCC", Members: 1, Events: 2, Present: 0, Rate: 0},
		{Department: "Chorale", Members: 0, Events: 2, Present: 0, Rate: 0},
	}, got.Departments)
}

func TestGlobal_BoundsIncluded(t *testing.T) {
	events := []models.Event{{ID: 1, Date: date("2026-03-31").Add(20 * time.Hour)}}

	got := Global(date("2026-03-31"), date("2026-03-31"), nil, events, nil, nil)
	assert.Len(t, got.Events, 1)
}

func TestForMember(t *testing.T) {
	recorded := date("2026-03-01").Add(10 * time.Hour)
	m := models.Member{ID: 1, Name: "Alice", Dept: "DLB"}
	events := []models.Event{
		{ID: 3, Name: "Culte 3", Date: date("2026-03-15")},
		{ID: 2, Name: "Culte 2", Date: date("2026-03-08")},
		{ID: 1, Name: "Culte 1", Date: date("2026-03-01")},
	}
	attendances := []models.Attendance{
		{MemberID: 1, EventID: 1, Status: models.AttendancePresent, CreatedAt: recorded},
		{MemberID: 1, EventID: 2, Status: models.AttendanceExcused, CreatedAt: recorded},
		// other member
		{MemberID: 2, EventID: 3, Status: models.AttendancePresent},
	}

	got := ForMember(m, events, attendances)

	assert.Equal(t, Counts{Total: 3, Recorded: 2, Present: 1, Excused: 1, Rate: 33.3}, got.Counts)
	require.Len(t, got.History, 3)
	assert.Equal(t, NotRecorded, got.History[0].Code)
	assert.Nil(t, got.History[0].RecordedAt)
	assert.Equal(t, "AJ", got.History[1].Code)
	require.NotNil(t, got.History[2].RecordedAt)
	assert.Equal(t, recorded, *got.History[2].RecordedAt)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Department{}, &models.Member{}, &models.Event{}, &models.Attendance{}))

	return db
}

func TestLoad(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&models.Department{Name: "DLB"}).Error)

	alice := &models.Member{Name: "Alice", Dept: "DLB"}
	require.NoError(t, db.Create(alice).Error)

	first := &models.Event{Name: "Culte 1", Date: date("2026-03-01")}
	second := &models.Event{Name: "Culte 2", Date: date("2026-03-08")}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(&models.Attendance{MemberID: alice.ID, EventID: first.ID, Status: models.AttendancePresent}).Error)

	eventReport, err := LoadEvent(db, first.ID)
	require.NoError(t, err)
	assert.Equal(t, Percent(100), eventReport.Counts.Rate)

	global, err := LoadGlobal(db, date("2026-03-01"), date("2026-03-31"))
	require.NoError(t, err)
	require.Len(t, global.Events, 2)
	assert.Equal(t, "Culte 1", global.Events[0].Name)
	assert.Equal(t, Percent(50), global.Departments[0].Rate)

	memberReport, err := LoadMember(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, Percent(50), memberReport.Counts.Rate)

	_, err = LoadEvent(db, 99)
	assert.ErrorIs(t, err, event.ErrEventNotFound)

	_, err = LoadMember(db, 99)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	_, err = LoadGlobal(db, date("2026-03-31"), date("2026-03-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = LoadGlobal(nil, date("2026-03-01"), date("2026-03-31"))
	assert.ErrorIs(t, err, ErrDBNil)
}
