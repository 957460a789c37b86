// Package onlyfiles is a flat, directory-less file storage engine backed by a
// single regular file acting as a virtual disk.
//
// The package-level functions in onlyfiles.go expose a C-style operation
// surface: a process-wide single mount and small-integer result codes.
// Library users who want errors instead of codes should use the driver
// package directly.
package onlyfiles

import (
	"github.com/dargueta/onlyfiles/driver"
)

// Capacity constants of the on-disk format.
const (
	BlockSize       = driver.BlockSize
	MaxBlocks       = driver.TotalBlocks
	MaxFiles        = driver.MaxFiles
	MaxFilename     = driver.MaxFilenameLength
	MaxDirectBlocks = driver.MaxDirectBlocks
	MaxFileSize     = driver.MaxFileSize
)

// FSStat describes the current state of the mounted file system.
type FSStat = driver.FSStat

// Result codes of the C-style surface. Each operation documents which subset
// it returns.
const (
	// StatusOK is returned by every operation on success.
	StatusOK = 0

	// StatusExists: create found a file with the same name.
	StatusExists = -1
	// StatusNoFreeInodes: create found no free inode slot.
	StatusNoFreeInodes = -2

	// StatusNotFound: the named file does not exist.
	StatusNotFound = -1
	// StatusNoSpace: write ran out of data blocks or exceeded the file size cap.
	StatusNoSpace = -2

	// StatusGenericFailure: format, mount, or list failed.
	StatusGenericFailure = -1

	// StatusOtherError: bad argument, not mounted, or an I/O fault. Delete
	// reports this condition as -2; see DeleteStatusOtherError.
	StatusOtherError = -3
	// DeleteStatusOtherError is delete's code for the StatusOtherError
	// condition.
	DeleteStatusOtherError = -2
)
