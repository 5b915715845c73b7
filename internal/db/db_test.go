package db

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestMigrateRunsEveryStatementInOrder(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for _, stmt := range Migrations {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(t.Context(), sqlx.NewDb(conn, "postgres")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("permission denied"))

	err = Migrate(t.Context(), sqlx.NewDb(conn, "postgres"))
	require.ErrorContains(t, err, "failed to run migration")
	require.NoError(t, mock.ExpectationsWereMet())
}
