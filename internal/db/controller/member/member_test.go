package member

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AttendanceAdmin/AttendanceAdmin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database with two departments.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Department{}, &models.Member{}, &models.Attendance{})
	require.NoError(t, err, "failed to migrate test database")

	for _, name := range []string{"Accueil", "Chorale"} {
		require.NoError(t, db.Create(&models.Department{Name: name}).Error)
	}

	return db
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name          string
		member        models.Member
		expectedError error
	}{
		{
			name:   "valid member",
			member: models.Member{Name: " Paul ", Dept: "Accueil", Role: "Hôte"},
		},
		{
			name:          "missing name",
			member:        models.Member{Dept: "Accueil"},
			expectedError: ErrMemberNameEmpty,
		},
		{
			name:          "missing department",
			member:        models.Member{Name: "Paul"},
			expectedError: ErrMemberDepartmentEmpty,
		},
		{
			name:          "unknown department",
			member:        models.Member{Name: "Paul", Dept: "Cuisine"},
			expectedError: ErrUnknownDepartment,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupTestDB(t)

			err := Create(db, &tc.member)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, tc.member.ID)
			assert.Equal(t, "Paul", tc.member.Name)
		})
	}

	assert.ErrorIs(t, Create(nil, &models.Member{}), ErrDBNil)
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	for _, m := range []models.Member{
		{Name: "Zoé", Dept: "Chorale"},
		{Name: "Albert", Dept: "Accueil"},
		{Name: "Marc", Dept: "Chorale"},
	} {
		require.NoError(t, Create(db, &m))
	}

	all, err := GetAll(db, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Albert", all[0].Name)

	chorale, err := GetAll(db, "Chorale")
	require.NoError(t, err)
	require.Len(t, chorale, 2)
	assert.Equal(t, "Marc", chorale[0].Name)
	assert.Equal(t, "Zoé", chorale[1].Name)

	depts, err := Departments(db)
	require.NoError(t, err)
	assert.Len(t, depts, 3)
	assert.Equal(t, "Accueil", depts[all[0].ID])
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)

	m := models.Member{Name: "Paul", Dept: "Accueil"}
	require.NoError(t, Create(db, &m))

	updated, err := Update(db, m.ID, &models.Member{Name: "Paul B.", Dept: "Chorale", Phone: "0102"})
	require.NoError(t, err)
	assert.Equal(t, "Paul B.", updated.Name)
	assert.Equal(t, "Chorale", updated.Dept)
	assert.Equal(t, "0102", updated.Phone)

	stored, err := GetByID(db, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chorale", stored.Dept)

	_, err = Update(db, m.ID+100, &models.Member{Name: "X", Dept: "Chorale"})
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = Update(db, m.ID, &models.Member{Name: "X", Dept: "Cuisine"})
	require.ErrorIs(t, err, ErrUnknownDepartment)
}

func TestDeleteCascadesAttendances(t *testing.T) {
	db := setupTestDB(t)

	paul := models.Member{Name: "Paul", Dept: "Accueil"}
	anne := models.Member{Name: "Anne", Dept: "Accueil"}
	require.NoError(t, Create(db, &paul))
	require.NoError(t, Create(db, &anne))

	require.NoError(t, db.Create(&models.Attendance{MemberID: paul.ID, EventID: 1}).Error)
	require.NoError(t, db.Create(&models.Attendance{MemberID: anne.ID, EventID: 1}).Error)

	require.NoError(t, Delete(db, paul.ID))

	var remaining []models.Attendance
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, anne.ID, remaining[0].MemberID)

	require.ErrorIs(t, Delete(db, paul.ID), ErrMemberNotFound)

	_, err := GetByID(db, paul.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)
}
