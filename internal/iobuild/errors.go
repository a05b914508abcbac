package iobuild

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnstar/pkg/errcode"
)

// NoStagingError is returned when the staging directory does not exist.
func NoStagingError(dir string, err error) error {
	msg := `Staging directory <em>%s</em> not found

<em>How to fix:</em>
  1. Run "gnstar stage" first
  2. Or point to an existing one with --staging-dir`
	vars := []any{dir}
	if err == nil {
		err = fmt.Errorf("%s is not a directory", dir)
	}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.BuildNoStagingError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: staging directory %s: %w",
			fn.Name(), dir, err),
	}
}

func CreateDirError(dir string, err error) error {
	msg := "Cannot create warehouse directory <em>%s</em>"
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

// CancelledError is returned when the context is cancelled between tables.
func CancelledError(err error) error {
	msg := "Warehouse build was cancelled"
	return &gn.Error{
		Code: errcode.CancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("build cancelled: %w", err),
	}
}
