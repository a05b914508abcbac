package ioexport

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gnames/gn"
	"github.com/gnames/gnstar/pkg/errcode"
	"github.com/gnames/gnstar/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockSQLite(t *testing.T, batchSize int) (*sqliteTarget, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := newSQLite("unused.sqlite", batchSize)
	s.db = db
	return s, mock
}

func dimTable() *table.Table {
	t := table.New("dim_customers", "customer_sk", "customer_id", "name")
	_ = t.Append(int64(1), int64(10), "A")
	_ = t.Append(int64(2), int64(20), nil)
	_ = t.Append(int64(3), int64(30), "C")
	return t
}

func TestSQLiteLoad(t *testing.T) {
	s, mock := mockSQLite(t, 2)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "dim_customers"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(
		`CREATE TABLE "dim_customers" ("customer_sk" INTEGER, ` +
			`"customer_id" INTEGER, "name" TEXT)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "dim_customers"`)).
		WithArgs(int64(1), int64(10), "A", int64(2), int64(20), nil).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "dim_customers"`)).
		WithArgs(int64(3), int64(30), "C").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var batches []int
	n, err := s.Load(context.Background(), dimTable(), func(i int) {
		batches = append(batches, i)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{2, 1}, batches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteLoadInsertFails(t *testing.T) {
	s, mock := mockSQLite(t, 10)

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := s.Load(context.Background(), dimTable(), func(int) {})
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBInsertError, gnErr.Code)
	assert.Equal(t, []any{"dim_customers"}, gnErr.Vars)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteLoadCreateFails(t *testing.T) {
	s, mock := mockSQLite(t, 10)

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	_, err := s.Load(context.Background(), dimTable(), func(int) {})
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBCreateTableError, gnErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteAudit(t *testing.T) {
	s, mock := mockSQLite(t, 10)
	run := &LoadRun{
		ID:         "run-1",
		BuildRunID: "build-1",
		Target:     "sqlite",
		Tables:     3,
		Failed:     1,
		RowCount:   42,
		StartedAt:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Duration:   "00:00:01",
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS load_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO load_runs")).
		WithArgs("run-1", "build-1", "sqlite", int64(3), int64(1), int64(42),
			sqlmock.AnyArg(), "00:00:01").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Audit(context.Background(), run)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteAuditFails(t *testing.T) {
	s, mock := mockSQLite(t, 10)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS load_runs").
		WillReturnError(errors.New("readonly database"))

	err := s.Audit(context.Background(), &LoadRun{ID: "x"})
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBAuditError, gnErr.Code)
}

func TestSQLiteNotConnected(t *testing.T) {
	s := newSQLite("unused.sqlite", 10)
	ctx := context.Background()

	_, err := s.Load(ctx, dimTable(), func(int) {})
	assert.Equal(t, errcode.DBNotConnectedError, err.(*gn.Error).Code)

	err = s.Audit(ctx, &LoadRun{})
	assert.Equal(t, errcode.DBNotConnectedError, err.(*gn.Error).Code)

	assert.NoError(t, s.Close())
	assert.Equal(t, 1, s.Jobs())
}

func TestRowsPerBatch(t *testing.T) {
	tests := []struct {
		msg       string
		batchSize int
		cols      int
		res       int
	}{
		{"batch size wins", 100, 3, 100},
		{"parameter limit wins", 100_000, 10, 3276},
		{"no batch size", 0, 2, 16383},
		{"no columns", 5, 0, 5},
		{"very wide table", 0, 40_000, 1},
	}

	for _, v := range tests {
		s := newSQLite("", v.batchSize)
		assert.Equal(t, v.res, s.rowsPerBatch(v.cols), v.msg)
	}
}
