package iotable

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnstar/pkg/errcode"
)

// ErrNotFound is wrapped by errors of tables that have no file in a
// directory.
var ErrNotFound = errors.New("table not found")

// NotFoundError is returned when neither a Parquet nor a CSV file exists
// for a table.
func NotFoundError(dir, name string) error {
	msg := "Table <em>%s</em> not found in %s"
	vars := []any{name, dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TableNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s in %s: %w",
			fn.Name(), name, dir, ErrNotFound),
	}
}

// IsNotFound reports if err was created by NotFoundError.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return gnErr.Code == errcode.TableNotFoundError
	}
	return false
}

// ReadError is returned when a table file exists but cannot be parsed.
func ReadError(path string, err error) error {
	msg := "Cannot read table <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TableReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read %s: %w", fn.Name(), path, err),
	}
}

// WriteError is returned when a table could not be written in any format.
func WriteError(name string, err error) error {
	msg := "Cannot write table <em>%s</em>"
	vars := []any{name}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TableWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write table %s: %w",
			fn.Name(), name, err),
	}
}

// FormatError is returned for files with an unsupported extension.
func FormatError(path string) error {
	msg := "Unsupported table format of <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.TableFormatError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: unsupported format of %s",
			fn.Name(), path),
	}
}
