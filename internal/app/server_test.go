package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readinglist/internal/bookservice"
	"readinglist/internal/config"
)

func TestNewBookServer_Memory(t *testing.T) {
	srv, err := NewBookServer(context.Background(), config.ServerConfig{Host: "127.0.0.1", Port: 0, Storage: config.StorageMemory})
	require.NoError(t, err)
	defer srv.Close()

	assert.IsType(t, &bookservice.MemoryRepository{}, srv.Repository)
	assert.NotNil(t, srv.Server)
}

func TestNewBookServer_UnknownStorage(t *testing.T) {
	_, err := NewBookServer(context.Background(), config.ServerConfig{Storage: "mysql"})
	assert.Error(t, err)
}

func TestNewBookServer_PostgresRunsMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	origOpen, origMigrate := openPostgres, runMigrations
	defer func() { openPostgres, runMigrations = origOpen, origMigrate }()

	var gotDSN string
	migrated := false
	openPostgres = func(ctx context.Context, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, nil
	}
	runMigrations = func(ctx context.Context, got *sql.DB) error {
		migrated = got == db
		return nil
	}

	srv, err := NewBookServer(context.Background(), config.ServerConfig{
		Storage:     config.StoragePostgres,
		DatabaseURL: "postgres://reader@db/books",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://reader@db/books", gotDSN)
	assert.True(t, migrated)
	assert.IsType(t, &bookservice.PostgresRepository{}, srv.Repository)
	require.NoError(t, srv.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBookServer_MigrationFailureClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	origOpen, origMigrate := openPostgres, runMigrations
	defer func() { openPostgres, runMigrations = origOpen, origMigrate }()
	openPostgres = func(context.Context, string) (*sql.DB, error) { return db, nil }
	runMigrations = func(context.Context, *sql.DB) error { return errors.New("dirty schema") }

	_, err = NewBookServer(context.Background(), config.ServerConfig{Storage: config.StoragePostgres, DatabaseURL: "postgres://db"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBookServer_ExposesMetrics(t *testing.T) {
	srv, err := NewBookServer(context.Background(), config.ServerConfig{Host: "127.0.0.1", Storage: config.StorageMemory})
	require.NoError(t, err)

	addr, err := srv.Server.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Server.Serve(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
}
