package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-reader/kotoba/internal/config"
	"github.com/kotoba-reader/kotoba/schemas"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{
			name: "creates connection with valid config",
			cfg: config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Database: "kotoba",
				Username: "reader",
				Password: "testpass",
			},
		},
		{
			name: "creates connection with pool settings and params",
			cfg: config.DatabaseConfig{
				Host:            "db.example.com",
				Port:            3307,
				Database:        "kotoba",
				Username:        "admin",
				Password:        "secret",
				TLS:             true,
				Params:          map[string]string{"charset": "utf8mb4"},
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, got)
			defer got.Close()

			assert.Equal(t, "mysql", got.DriverName())
		})
	}
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitReady(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		attempts  uint
		wantCalls int
		wantErr   bool
	}{
		{name: "ready at once", failures: 0, attempts: 3, wantCalls: 1},
		{name: "ready after retries", failures: 2, attempts: 3, wantCalls: 3},
		{name: "never ready", failures: 5, attempts: 3, wantCalls: 3, wantErr: true},
		{name: "zero attempts still pings once", failures: 0, attempts: 0, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := &flakyPinger{failures: tt.failures}
			err := WaitReady(context.Background(), pinger, tt.attempts, time.Millisecond)
			if tt.wantErr {
				assert.ErrorContains(t, err, "connection refused")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, pinger.calls)
		})
	}
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := fstest.MapFS{
		"002_add_index.sql": {Data: []byte("CREATE INDEX idx ON stories (title);")},
		"001_create.sql":    {Data: []byte("CREATE TABLE IF NOT EXISTS stories (id CHAR(26));")},
		"README.md":         {Data: []byte("not a migration")},
	}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS stories").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX idx ON stories").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "mysql"), migrations))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_EmbeddedSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS stories").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "mysql"), schemas.Migrations()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("syntax error"))

	err = Migrate(context.Background(), sqlx.NewDb(db, "mysql"), fstest.MapFS{
		"001_create.sql": {Data: []byte("CREATE TABLE broken (")},
	})
	assert.ErrorContains(t, err, "001_create.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
