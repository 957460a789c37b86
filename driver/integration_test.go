package driver_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/onlyfiles/driver"
	"github.com/dargueta/onlyfiles/imgtest"
)

// TestFullSessionLifecycle walks a whole session through the public surface:
// format, mount, mutate, unmount, remount.
func TestFullSessionLifecycle(t *testing.T) {
	drv, stream := imgtest.NewFormattedImage(t)
	require.NoError(t, drv.Mount())

	require.NoError(t, drv.CreateFile("journal"))
	require.NoError(t, drv.CreateFile("scratch"))

	entry := bytes.Repeat([]byte("day one\n"), 700)
	require.NoError(t, drv.WriteFile("journal", entry))
	require.NoError(t, drv.DeleteFile("scratch"))
	require.NoError(t, drv.Unmount())

	// Remount through a new driver on the same stream.
	fresh := driver.NewDriverFromStream(stream)
	require.NoError(t, fresh.Mount())

	names, err := fresh.ListFiles(driver.MaxFiles)
	require.NoError(t, err)
	assert.Equal(t, []string{"journal"}, names)

	buffer := make([]byte, len(entry))
	count, err := fresh.ReadFile("journal", buffer)
	require.NoError(t, err)
	assert.Equal(t, len(entry), count)
	assert.Equal(t, entry, buffer)

	stat := fresh.FSStat()
	assert.EqualValues(t, 1, stat.Files)
	assert.EqualValues(
		t,
		driver.TotalBlocks-driver.DataBlocksStart-2,
		stat.BlocksFree,
		"a 5600-byte file occupies two blocks")
}

func TestMountedDriverHelper(t *testing.T) {
	drv := imgtest.NewMountedDriver(t)
	require.True(t, drv.IsMounted())

	free, err := drv.FreeBlockCount()
	require.NoError(t, err)
	assert.EqualValues(t, driver.TotalBlocks-driver.DataBlocksStart, free)
}
