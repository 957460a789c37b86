// Package imgtest builds in-memory disk images for tests.
package imgtest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/dargueta/onlyfiles/driver"
)

// NewImageStream returns a fixed-size in-memory stream the size of one disk
// image. Writes past the end of the buffer trigger an error.
func NewImageStream(t *testing.T) io.ReadWriteSeeker {
	t.Helper()
	return bytesextra.NewReadWriteSeeker(make([]byte, driver.ImageSize))
}

// NewFormattedImage formats a fresh in-memory image and returns a driver on it
// along with the underlying stream.
func NewFormattedImage(t *testing.T) (*driver.Driver, io.ReadWriteSeeker) {
	t.Helper()

	stream := NewImageStream(t)
	drv := driver.NewDriverFromStream(stream)
	require.NoError(t, drv.Format(), "formatting in-memory image failed")
	return drv, stream
}

// NewMountedDriver formats and mounts a fresh in-memory image.
func NewMountedDriver(t *testing.T) *driver.Driver {
	t.Helper()

	drv, _ := NewFormattedImage(t)
	require.NoError(t, drv.Mount(), "mounting freshly formatted image failed")
	return drv
}
