package errors_test

import (
	stderrors "errors"
	"testing"

	fserrors "github.com/dargueta/onlyfiles/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewWithMessage(t *testing.T) {
	newErr := fserrors.NewWithMessage(fserrors.ENOSPC, "asdfqwerty")
	assert.Equal(
		t, "No space left on device: asdfqwerty", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, fserrors.ErrNoSpaceOnDevice)
}

func TestNewFromError(t *testing.T) {
	originalErr := stderrors.New("original error")
	newErr := fserrors.NewFromError(fserrors.EEXIST, originalErr)
	expectedMessage := "File exists: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, fserrors.ErrExists, "errno sentinel not matched")
}

func TestErrnoOf(t *testing.T) {
	assert.Equal(t, fserrors.EOK, fserrors.ErrnoOf(nil))
	assert.Equal(t, fserrors.ENOENT, fserrors.ErrnoOf(fserrors.ErrNotFound))
	assert.Equal(
		t,
		fserrors.EPERM,
		fserrors.ErrnoOf(fserrors.ErrNotMounted),
		"custom-message sentinels must keep their code")
	assert.Equal(t, fserrors.EIO, fserrors.ErrnoOf(stderrors.New("plain")))
}

func TestStrErrorUnknownCode(t *testing.T) {
	assert.Contains(t, fserrors.StrError(fserrors.Errno(9999)), "9999")
}
