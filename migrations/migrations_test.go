package migrations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAll_Ordered(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, "0001_init", all[0].Version)
	assert.Equal(t, "0002_favorites_rename", all[1].Version)
	assert.Contains(t, all[0].SQL, "pg_notify('event_changes'")
	assert.Contains(t, all[0].SQL, "CREATE TABLE IF NOT EXISTS events")
}

func TestFavoritesRename_KeepsFirstOccurrenceOrder(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	rename := all[1].SQL
	assert.Contains(t, rename, "WITH ORDINALITY")
	assert.Contains(t, rename, "ORDER BY min(pos)")
	assert.NotContains(t, rename, "DISTINCT", "DISTINCT does not keep insertion order")
}

func TestApply_SkipsRecordedVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	all := []Migration{
		{Version: "0001_init", SQL: "CREATE TABLE a (id INT)"},
		{Version: "0002_next", SQL: "CREATE TABLE b (id INT)"},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("0001_init").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("0002_next").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).WithArgs("0002_next").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := apply(context.Background(), db, quietLogger, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_next"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	all := []Migration{{Version: "0001_init", SQL: "CREATE TABLE a (id INT)"}}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("0001_init").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := apply(context.Background(), db, quietLogger, all)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_init")
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}
