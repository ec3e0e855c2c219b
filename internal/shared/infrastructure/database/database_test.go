package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		url      string
		expected Driver
	}{
		{"", DriverSQLite},
		{"postgres://u:p@localhost:5432/db", DriverPostgres},
		{"postgresql://localhost/db", DriverPostgres},
		{"sqlite:///tmp/x.db", DriverSQLite},
		{"file:/tmp/x", DriverSQLite},
		{"/var/lib/shiftgrid/data.sqlite3", DriverSQLite},
		{"host=localhost dbname=x", DriverPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDriver(tt.url))
		})
	}
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("find: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(nil))
	assert.False(t, IsNoRows(fmt.Errorf("other")))
}

func TestOverlapViolation_Postgres(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01", ConstraintName: "booking_overlap_resource"})
	name, ok := OverlapViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "booking_overlap_resource", name)

	_, ok = OverlapViolation(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_pkey"})
	assert.False(t, ok)
}

func TestOpen_UnregisteredDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: Driver("oracle")})
	assert.Error(t, err)
}

type fakeTx struct {
	Transaction
	committed, rolledBack bool
}

func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

type fakeConn struct {
	Connection
	tx *fakeTx
}

func (f *fakeConn) BeginTx(context.Context) (Transaction, error) { return f.tx, nil }

func TestUnitOfWork_NestedDoesNotFinishOuter(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{}}
	uow := NewUnitOfWork(conn)
	ctx := context.Background()

	outer, err := uow.Begin(ctx)
	assert.NoError(t, err)
	inner, err := uow.Begin(outer)
	assert.NoError(t, err)

	assert.NoError(t, uow.Commit(inner))
	assert.False(t, conn.tx.committed)

	assert.NoError(t, uow.Commit(outer))
	assert.True(t, conn.tx.committed)
	assert.Same(t, conn.tx, ExecutorFromContext(outer, conn))

	assert.Error(t, uow.Rollback(ctx))
}
