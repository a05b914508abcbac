package ioexport

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnstar/pkg/errcode"
)

// TargetError is returned for an unknown export target.
func TargetError(target string) error {
	msg := `Unknown export target <em>%s</em>

<em>Valid targets:</em> sqlite, postgres`
	vars := []any{target}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ExportTargetError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: unknown target %q", fn.Name(), target),
	}
}

// ConnectionError is returned when the target database cannot be opened.
func ConnectionError(kind, where string, err error) error {
	msg := `Cannot connect to %s database <em>%s</em>

<em>How to fix:</em>
  1. For postgres check that the server is running:
     <em>pg_isready</em>
  2. Review the database and export settings in config.yaml
     or GNSTAR_DATABASE_* environment variables`
	vars := []any{kind, where}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: failed to connect to %s: %w",
			fn.Name(), where, err),
	}
}

// NotConnectedError is returned when a target is used before Open.
func NotConnectedError() error {
	msg := "Database is not connected"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: database not connected", fn.Name()),
	}
}

func CreateTableError(name string, err error) error {
	msg := "Cannot create table <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBCreateTableError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create table %s: %w",
			fn.Name(), name, err),
	}
}

func InsertError(name string, err error) error {
	msg := "Cannot insert rows into <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBInsertError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot insert into %s: %w",
			fn.Name(), name, err),
	}
}

// AuditError is returned when the load_runs record cannot be saved.
func AuditError(err error) error {
	msg := "Cannot record the export in <em>load_runs</em>"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBAuditError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: audit: %w", fn.Name(), err),
	}
}

// WarehouseDirError is returned when the warehouse directory cannot be
// listed.
func WarehouseDirError(dir string, err error) error {
	msg := `Cannot read warehouse directory <em>%s</em>

<em>How to fix:</em>
  1. Run "gnstar build" first
  2. Or point to an existing one with --warehouse-dir`
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ListDirError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}

// AllTablesFailedError is returned when no table could be exported.
func AllTablesFailedError(failed int) error {
	msg := "Export failed for all <em>%d</em> tables"
	vars := []any{failed}
	return &gn.Error{
		Code: errcode.ExportAllTablesFailedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("all %d tables failed to export", failed),
	}
}

// CancelledError is returned when the context is cancelled during export.
func CancelledError(err error) error {
	msg := "Export was cancelled"
	return &gn.Error{
		Code: errcode.CancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("export cancelled: %w", err),
	}
}
