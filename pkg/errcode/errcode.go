package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	DirNotFoundError
	ListDirError

	// Logging errors
	CreateLogFileError

	// Table I/O errors
	TableNotFoundError
	TableReadError
	TableWriteError
	TableFormatError
	ManifestWriteError

	// Pipeline errors
	BuildNoStagingError
	CancelledError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBCreateTableError
	DBInsertError
	DBAuditError
	ExportTargetError
	ExportAllTablesFailedError
)
