package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresLatest(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT price FROM price_history`).
		WithArgs("Москва", "Турция", 7).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(45000))

	price, ok, err := repo.Latest(context.Background(), mowTurkey7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 45000, price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestNoRows(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT price FROM price_history`).
		WithArgs("Москва", "Турция", 0).
		WillReturnRows(sqlmock.NewRows([]string{"price"}))

	_, ok, err := repo.Latest(context.Background(), mowTurkey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestError(t *testing.T) {
	repo, mock := newMock(t)
	down := errors.New("connection refused")
	mock.ExpectQuery(`SELECT price FROM price_history`).WillReturnError(down)

	_, ok, err := repo.Latest(context.Background(), mowTurkey)
	assert.ErrorIs(t, err, down)
	assert.False(t, ok)
}

func TestPostgresInsert(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO price_history`).
		WithArgs("Москва", "Турция", 0, 48500, sqlmock.AnyArg(), "run-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), observation(mowTurkey, 48500, time.Now()))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnsureSchema(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS price_history`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
