package iostage

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnstar/pkg/errcode"
)

// DirNotFoundError is returned when the raw directory does not exist.
func DirNotFoundError(dir string, err error) error {
	msg := `Raw data directory <em>%s</em> not found

<em>How to fix:</em>
  1. Put raw extracts (*.parquet, *.csv) into that directory
  2. Or point to another one with --raw-dir`
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DirNotFoundError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: raw directory %s: %w",
			fn.Name(), dir, err),
	}
}

func ListDirError(dir string, err error) error {
	msg := "Cannot list files in <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ListDirError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot list %s: %w", fn.Name(), dir, err),
	}
}

func CreateDirError(dir string, err error) error {
	msg := "Cannot create staging directory <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create directory: %w",
			fn.Name(), err),
	}
}

// CancelledError is returned when the context is cancelled between files.
func CancelledError(err error) error {
	msg := "Staging was cancelled"
	return &gn.Error{
		Code: errcode.CancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("staging cancelled: %w", err),
	}
}
