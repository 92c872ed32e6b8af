package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmn-lab/roster-api/internal/models"
)

func userRows(rows ...[]driverValue) *sqlmock.Rows {
	out := sqlmock.NewRows([]string{"id", "username", "first_name", "last_name", "email", "created_at"})
	for _, row := range rows {
		out.AddRow(row...)
	}
	return out
}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("u-1").
		WillReturnRows(userRows([]driverValue{"u-1", "tshevchenko", "Тарас", "Шевченко", "taras@school.ua", created}))

	user, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Шевченко Тарас", user.DisplayName())
}

func TestUserRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(userRows())

	user, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepositoryFindByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE last_name").
		WithArgs("Шевченко", "Тарас").
		WillReturnRows(userRows([]driverValue{"u-1", "tshevchenko", "Тарас", "Шевченко", "", time.Now()}))

	user, err := repo.FindByName(context.Background(), "Шевченко", "Тарас")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
}

func TestUserRepositorySearchBySurnamePrefixLowercasesPattern(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(last_name\\) LIKE").
		WithArgs("ше%").
		WillReturnRows(userRows(
			[]driverValue{"u-1", "tshevchenko", "Тарас", "Шевченко", "", time.Now()},
			[]driverValue{"u-2", "oshelest", "Олена", "Шелест", "", time.Now()},
		))

	users, err := repo.SearchBySurnamePrefix(context.Background(), "Ше")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Шелест", users[1].LastName)
}

func TestUserRepositorySearchBySurnameWrapsFragment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(last_name\\) LIKE").
		WithArgs("%евч%").
		WillReturnRows(userRows([]driverValue{"u-1", "tshevchenko", "Тарас", "Шевченко", "", time.Now()}))

	users, err := repo.SearchBySurname(context.Background(), "евч", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUserRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT 1 FROM users WHERE email").
		WithArgs("taras@school.ua").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM users WHERE email").
		WithArgs("nobody@school.ua").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByEmail(context.Background(), "taras@school.ua")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@school.ua")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepositoryCreateAndRename(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Тарас", "Шевченко", "taras@school.ua", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE users SET username").
		WithArgs("u-1", "tshevchenko").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{FirstName: "Тарас", LastName: "Шевченко", Email: "taras@school.ua"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	require.NoError(t, repo.UpdateUsername(context.Background(), "u-1", "tshevchenko"))
	require.NoError(t, mock.ExpectationsWereMet())
}
