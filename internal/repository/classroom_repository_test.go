package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassroomRepositoryGetOrCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	updated := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO classrooms").
		WithArgs("329", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT classroom_id, screenshots_enabled, screenshot_interval, updated_at FROM classrooms").
		WithArgs("329").
		WillReturnRows(sqlmock.NewRows([]string{"classroom_id", "screenshots_enabled", "screenshot_interval", "updated_at"}).
			AddRow("329", true, 60, updated))

	room, err := repo.GetOrCreate(context.Background(), "329")
	require.NoError(t, err)
	assert.Equal(t, "329", room.ID)
	assert.True(t, room.ScreenshotsEnabled)
	assert.Equal(t, 60, room.ScreenshotInterval)
}

func TestClassroomRepositorySetScreenshotsEnabled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectExec("UPDATE classrooms SET screenshots_enabled").
		WithArgs("329", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetScreenshotsEnabled(context.Background(), "329", false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryGetOrCreateWorkplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	created := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO workplaces").
		WithArgs(sqlmock.AnyArg(), 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id, workplace_number, created_at FROM workplaces").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workplace_number", "created_at"}).
			AddRow("w-1", 7, created))

	workplace, err := repo.GetOrCreateWorkplace(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "w-1", workplace.ID)
	assert.Equal(t, 7, workplace.Number)
}
