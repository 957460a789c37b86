// This is a compatibility shim for the POSIX-defined errno codes the storage
// engine reports. The syscall package doesn't define all the values we need on
// all systems, particularly things like EUCLEAN.

package errors

import (
	"fmt"
)

type Errno int

var errorMessagesByCode map[Errno]string

const (
	EOK Errno = iota
	EPERM
	ENOENT
	EIO
	EBUSY
	EEXIST
	EINVAL
	EMFILE
	EFBIG
	ENOSPC
	ENAMETOOLONG
	EALREADY
	EUCLEAN
	EMEDIUMTYPE
)

var ErrNotPermitted = New(EPERM)
var ErrNotFound = New(ENOENT)
var ErrIOFailed = New(EIO)
var ErrBusy = New(EBUSY)
var ErrExists = New(EEXIST)
var ErrInvalidArgument = New(EINVAL)
var ErrTooManyOpenFiles = New(EMFILE)
var ErrFileTooLarge = New(EFBIG)
var ErrNoSpaceOnDevice = New(ENOSPC)
var ErrNameTooLong = New(ENAMETOOLONG)
var ErrAlreadyInProgress = New(EALREADY)
var ErrFileSystemCorrupted = New(EUCLEAN)
var ErrInvalidFileSystem = New(EMEDIUMTYPE)
var ErrNotMounted = NewWithMessage(EPERM, "file system is not mounted")

func init() {
	errorMessagesByCode = make(map[Errno]string, 16)
	errorMessagesByCode[EPERM] = "Operation not permitted"
	errorMessagesByCode[ENOENT] = "No such file or directory"
	errorMessagesByCode[EIO] = "Input/output error"
	errorMessagesByCode[EBUSY] = "Device or resource busy"
	errorMessagesByCode[EEXIST] = "File exists"
	errorMessagesByCode[EINVAL] = "Invalid argument"
	errorMessagesByCode[EMFILE] = "Too many open files"
	errorMessagesByCode[EFBIG] = "File too large"
	errorMessagesByCode[ENOSPC] = "No space left on device"
	errorMessagesByCode[ENAMETOOLONG] = "File name too long"
	errorMessagesByCode[EALREADY] = "Operation already in progress"
	errorMessagesByCode[EUCLEAN] = "Structure needs cleaning"
	errorMessagesByCode[EMEDIUMTYPE] = "Wrong medium type"
}

func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}
