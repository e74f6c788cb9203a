package application

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"tour-monitor/config"
	"tour-monitor/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func refused(context.Context, string) (*sql.DB, error) {
	return nil, errors.New("failed to ping db: dial tcp 127.0.0.1:1: connect: connection refused")
}

func TestOpenStoreFallsBackToCSV(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.PostgresDSN = "postgres://u:p@127.0.0.1:1/x?sslmode=disable"
	cfg.Storage.CSVPath = filepath.Join(t.TempDir(), "history.csv")
	app := NewApp(cfg, zap.NewNop())
	app.connectDB = refused

	store, closeStore := app.openStore(context.Background(), zap.NewNop())
	defer closeStore()
	assert.IsType(t, &domain.CSVRepository{}, store)
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.PostgresDSN = "postgres://u:p@127.0.0.1:1/x?sslmode=disable"
	app := NewApp(cfg, zap.NewNop())
	app.connectDB = refused

	store, closeStore := app.openStore(context.Background(), zap.NewNop())
	defer closeStore()
	assert.IsType(t, &domain.MemoryRepository{}, store)
}

func TestOpenStoreSchemaFailureFallsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS price_history`).WillReturnError(errors.New("permission denied"))
	mock.ExpectClose()

	cfg := config.Default()
	cfg.Storage.PostgresDSN = "postgres://tours@db/tours"
	app := NewApp(cfg, zap.NewNop())
	app.connectDB = func(context.Context, string) (*sql.DB, error) { return db, nil }

	store, closeStore := app.openStore(context.Background(), zap.NewNop())
	defer closeStore()
	assert.IsType(t, &domain.MemoryRepository{}, store)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenStorePostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS price_history`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	cfg := config.Default()
	cfg.Storage.PostgresDSN = "postgres://tours@db/tours"
	app := NewApp(cfg, zap.NewNop())
	app.connectDB = func(context.Context, string) (*sql.DB, error) { return db, nil }

	store, closeStore := app.openStore(context.Background(), zap.NewNop())
	assert.IsType(t, &domain.PostgresRepository{}, store)
	closeStore()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenStoreWithoutConfig(t *testing.T) {
	store, closeStore := NewApp(config.Default(), zap.NewNop()).openStore(context.Background(), zap.NewNop())
	defer closeStore()
	assert.IsType(t, &domain.MemoryRepository{}, store)
}
