package persistence

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"migrations/0002_cards.sql": {Data: []byte("CREATE TABLE cards (id INT)")},
		"migrations/0001_users.sql": {Data: []byte("CREATE TABLE users (id INT)")},
	}
}

func TestRunMigrationsAppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("0001_users").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery("SELECT EXISTS").WithArgs("0002_cards").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE cards").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("0002_cards").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = runMigrations(context.Background(), db, testMigrations(), zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsRollsBackFailedFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("0001_users").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE users").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = runMigrations(context.Background(), db, testMigrations(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migration 0001_users")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsWithoutDatabase(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	users, err := migrationFiles.ReadFile("migrations/0001_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(users), "CREATE TABLE IF NOT EXISTS users")

	cards, err := migrationFiles.ReadFile("migrations/0002_credit_cards.sql")
	require.NoError(t, err)
	assert.Contains(t, string(cards), "REFERENCES users")
}

func TestStatementOperation(t *testing.T) {
	assert.Equal(t, "SELECT", statementOperation("  select id from users"))
	assert.Equal(t, "UPDATE", statementOperation("UPDATE credit_cards SET"))
	assert.Equal(t, "UNKNOWN", statementOperation(""))
}
