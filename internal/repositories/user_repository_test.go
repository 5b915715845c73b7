package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendship-service/internal/models"
)

var userCols = []string{"id", "first_name", "last_name", "email", "pronouns", "is_coworking"}

func TestUserGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(q("FROM users WHERE id=$1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(2), "Grace", "Hopper", "grace@example.com", "she/her", true))

	user, err := repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Hopper", user.LastName)
	assert.True(t, user.IsCoworking)
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(q("FROM users WHERE id=$1")).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), 2)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserGetByIDsEmptySkipsQuery(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewUserRepository(db)

	users, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserGetByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(q("WHERE id = ANY($1) ORDER BY id")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "Ada", "Lovelace", "", "", false).
			AddRow(int64(3), "Alan", "Turing", "", "", true))

	users, err := repo.GetByIDs(context.Background(), []int64{3, 1})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
}

func TestPresenceSetUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPresenceRepository(db)

	mock.ExpectExec(q("UPDATE users SET is_coworking=$2 WHERE id=$1")).
		WithArgs(int64(42), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.SetPresence(context.Background(), 42, true), models.ErrNotFound)
}

func TestPresenceArePresentFillsMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPresenceRepository(db)

	mock.ExpectQuery(q("SELECT id, is_coworking FROM users")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_coworking"}).AddRow(int64(2), true))

	present, err := repo.ArePresent(context.Background(), []int64{2, 7})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{2: true, 7: false}, present)
}
