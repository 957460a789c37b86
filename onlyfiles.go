package onlyfiles

import (
	"os"

	"github.com/dargueta/onlyfiles/driver"
	"github.com/dargueta/onlyfiles/errors"
)

// Process-wide mount state. The engine supports exactly one mounted image at a
// time and is single-threaded by contract.
var (
	diskFile *os.File
	fs       *driver.Driver
	mounted  bool
)

// Format creates or truncates the backing file at `path` and writes a
// canonical empty image to it. Fails if a file system is currently mounted.
// Returns StatusOK or StatusGenericFailure.
func Format(path string) int {
	if mounted {
		return StatusGenericFailure
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return StatusGenericFailure
	}
	defer file.Close()

	if err := driver.NewDriverFromFile(file).Format(); err != nil {
		return StatusGenericFailure
	}
	return StatusOK
}

// Mount opens and validates the image at `path`. On success the backing file
// stays open until Unmount. Returns StatusOK or StatusGenericFailure.
func Mount(path string) int {
	if mounted {
		return StatusGenericFailure
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return StatusGenericFailure
	}

	drv := driver.NewDriverFromFile(file)
	if err := drv.Mount(); err != nil {
		file.Close()
		return StatusGenericFailure
	}

	diskFile = file
	fs = drv
	mounted = true
	return StatusOK
}

// Unmount closes the backing file and clears the mounted state. Calling it
// with nothing mounted is a no-op.
func Unmount() {
	if !mounted {
		return
	}
	fs.Unmount()
	diskFile.Close()
	diskFile = nil
	fs = nil
	mounted = false
}

// Create makes a new empty file. Returns StatusOK, StatusExists,
// StatusNoFreeInodes, or StatusOtherError.
func Create(name string) int {
	if !mounted {
		return StatusOtherError
	}

	switch err := fs.CreateFile(name); errors.ErrnoOf(err) {
	case errors.EOK:
		return StatusOK
	case errors.EEXIST:
		return StatusExists
	case errors.EMFILE:
		return StatusNoFreeInodes
	default:
		return StatusOtherError
	}
}

// Delete removes a file and frees its blocks. Returns StatusOK,
// StatusNotFound, or DeleteStatusOtherError.
func Delete(name string) int {
	if !mounted {
		return DeleteStatusOtherError
	}

	switch err := fs.DeleteFile(name); errors.ErrnoOf(err) {
	case errors.EOK:
		return StatusOK
	case errors.ENOENT:
		return StatusNotFound
	default:
		return DeleteStatusOtherError
	}
}

// List fills `names` with the names of existing files and returns how many
// were stored, or StatusGenericFailure.
func List(names []string) int {
	if !mounted {
		return StatusGenericFailure
	}

	found, err := fs.ListFiles(len(names))
	if err != nil {
		return StatusGenericFailure
	}
	return copy(names, found)
}

// Write replaces the contents of `name` with `data`. Returns StatusOK,
// StatusNotFound, StatusNoSpace, or StatusOtherError.
func Write(name string, data []byte) int {
	if !mounted {
		return StatusOtherError
	}

	switch err := fs.WriteFile(name, data); errors.ErrnoOf(err) {
	case errors.EOK:
		return StatusOK
	case errors.ENOENT:
		return StatusNotFound
	case errors.ENOSPC, errors.EFBIG:
		return StatusNoSpace
	default:
		return StatusOtherError
	}
}

// Read copies up to len(buffer) bytes of `name` into `buffer`. Returns the
// number of bytes read, StatusNotFound, or StatusOtherError.
func Read(name string, buffer []byte) int {
	if !mounted {
		return StatusOtherError
	}

	count, err := fs.ReadFile(name, buffer)
	switch errors.ErrnoOf(err) {
	case errors.EOK:
		return count
	case errors.ENOENT:
		return StatusNotFound
	default:
		return StatusOtherError
	}
}

// FreeBlocks reports the superblock's free-block counter, or
// StatusGenericFailure when nothing is mounted.
func FreeBlocks() int {
	if !mounted {
		return StatusGenericFailure
	}

	count, err := fs.FreeBlockCount()
	if err != nil {
		return StatusGenericFailure
	}
	return int(count)
}
