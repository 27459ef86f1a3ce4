package attendance

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

type fixture struct {
	db       *gorm.DB
	now      time.Time
	member   models.Member
	other    models.Member
	today    models.Event
	past     models.Event
	upcoming models.Event
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.Event{}, &models.Attendance{}))

	f := fixture{
		db:       db,
		now:      time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		member:   models.Member{Name: "Paul", Dept: "Accueil"},
		other:    models.Member{Name: "Anne", Dept: "Chorale"},
		today:    models.Event{Name: "Culte", Date: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)},
		past:     models.Event{Name: "Veillée", Date: time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC)},
		upcoming: models.Event{Name: "Retraite", Date: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)},
	}

	for _, m := range []*models.Member{&f.member, &f.other} {
		require.NoError(t, db.Create(m).Error)
	}

	for _, e := range []*models.Event{&f.today, &f.past, &f.upcoming} {
		require.NoError(t, db.Create(e).Error)
	}

	return f
}

func TestCreate(t *testing.T) {
	f := setup(t)

	testCases := []struct {
		name           string
		attendance     models.Attendance
		expectedError  error
		expectedStatus models.AttendanceStatus
	}{
		{
			name:           "current event with code",
			attendance:     models.Attendance{MemberID: f.member.ID, EventID: f.today.ID, Status: "AJ"},
			expectedStatus: models.AttendanceExcused,
		},
		{
			name:           "past event with unknown status defaults to present",
			attendance:     models.Attendance{MemberID: f.member.ID, EventID: f.past.ID, Status: "??"},
			expectedStatus: models.AttendancePresent,
		},
		{
			name:          "duplicate pair",
			attendance:    models.Attendance{MemberID: f.member.ID, EventID: f.today.ID, Status: "P"},
			expectedError: ErrAttendanceExists,
		},
		{
			name:          "upcoming event",
			attendance:    models.Attendance{MemberID: f.member.ID, EventID: f.upcoming.ID},
			expectedError: ErrEventUpcoming,
		},
		{
			name:          "unknown event",
			attendance:    models.Attendance{MemberID: f.member.ID, EventID: 999},
			expectedError: ErrEventNotFound,
		},
		{
			name:          "unknown member",
			attendance:    models.Attendance{MemberID: 999, EventID: f.today.ID},
			expectedError: ErrMemberNotFound,
		},
	}

	// cases depend on each other: the duplicate needs the first record
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Create(f.db, &tc.attendance, f.now)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, tc.attendance.Status)
		})
	}

	assert.ErrorIs(t, Create(nil, &models.Attendance{}, f.now), ErrDBNil)
}

func TestUpdate(t *testing.T) {
	f := setup(t)

	first := models.Attendance{MemberID: f.member.ID, EventID: f.today.ID}
	second := models.Attendance{MemberID: f.other.ID, EventID: f.today.ID}
	require.NoError(t, Create(f.db, &first, f.now))
	require.NoError(t, Create(f.db, &second, f.now))

	updated, err := Update(f.db, first.ID, &models.Attendance{
		MemberID: f.member.ID, EventID: f.today.ID, Status: "L", Notes: "15 min",
	}, f.now)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceLate, updated.Status)
	assert.Equal(t, "15 min", updated.Notes)

	_, err = Update(f.db, first.ID, &models.Attendance{MemberID: f.other.ID, EventID: f.today.ID}, f.now)
	require.ErrorIs(t, err, ErrAttendanceExists)

	_, err = Update(f.db, first.ID, &models.Attendance{MemberID: f.member.ID, EventID: f.upcoming.ID}, f.now)
	require.ErrorIs(t, err, ErrEventUpcoming)

	_, err = Update(f.db, 999, &models.Attendance{MemberID: f.member.ID, EventID: f.today.ID}, f.now)
	require.ErrorIs(t, err, ErrAttendanceNotFound)
}

func TestGetAllAndDelete(t *testing.T) {
	f := setup(t)

	for _, a := range []models.Attendance{
		{MemberID: f.member.ID, EventID: f.today.ID},
		{MemberID: f.member.ID, EventID: f.past.ID},
		{MemberID: f.other.ID, EventID: f.today.ID},
	} {
		require.NoError(t, Create(f.db, &a, f.now))
	}

	all, err := GetAll(f.db, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byMember, err := GetAll(f.db, Filter{MemberID: f.member.ID})
	require.NoError(t, err)
	assert.Len(t, byMember, 2)

	byEvent, err := GetAll(f.db, Filter{EventID: f.today.ID})
	require.NoError(t, err)
	assert.Len(t, byEvent, 2)

	require.NoError(t, Delete(f.db, all[0].ID))
	require.ErrorIs(t, Delete(f.db, all[0].ID), ErrAttendanceNotFound)

	_, err = GetByID(f.db, all[0].ID)
	require.ErrorIs(t, err, ErrAttendanceNotFound)
}
