package fat16

import (
	"fmt"
	"syscall"
)

// DriverError is a wrapper around a POSIX errno code, with an optional
// human-readable message. The Volume's file and directory operations
// (ReadFile, WriteFile, Truncate, Create, Unlink, Mkdir, Rmdir) return one
// of these on failure rather than a bare error, so callers at the upcall
// boundary can recover the errno without string-matching. Open, OpenSized
// and Close return plain errors from the image layer.
type DriverError struct {
	ErrnoCode syscall.Errno
	message   string
}

func (e *DriverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.ErrnoCode.Error()
}

// Errno returns the negative errno value the spec's upcall contract expects
// (0/count on success, negative errno on failure).
func (e *DriverError) Errno() int {
	return -int(e.ErrnoCode)
}

// NewDriverError creates a DriverError with the default message for the
// given errno.
func NewDriverError(errnoCode syscall.Errno) *DriverError {
	return &DriverError{ErrnoCode: errnoCode, message: errnoCode.Error()}
}

// NewDriverErrorWithMessage creates a DriverError with a custom message
// appended to the errno's default description.
func NewDriverErrorWithMessage(errnoCode syscall.Errno, message string) *DriverError {
	return &DriverError{
		ErrnoCode: errnoCode,
		message:   fmt.Sprintf("%s: %s", errnoCode.Error(), message),
	}
}

// Named sentinels for the error taxonomy in spec.md §7. Each is a function
// rather than a package-level *DriverError so every call site gets its own
// message without sharing mutable state.

func errNotFound(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.ENOENT, detail)
}

func errNotDir(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.ENOTDIR, detail)
}

func errIsDir(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.EISDIR, detail)
}

func errExists(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.EEXIST, detail)
}

func errNotEmpty(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.ENOTEMPTY, detail)
}

func errBusy(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.EBUSY, detail)
}

func errNoSpace(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.ENOSPC, detail)
}

func errInvalid(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.EINVAL, detail)
}

func errIO(detail string) *DriverError {
	return NewDriverErrorWithMessage(syscall.EIO, detail)
}
