package blockdev_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/onlyfiles/blockdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newTestDevice(t *testing.T, totalBlocks, blockSize uint) (blockdev.Device, []byte) {
	backing := make([]byte, totalBlocks*blockSize)
	stream := bytesextra.NewReadWriteSeeker(backing)
	return blockdev.New(stream, totalBlocks, blockSize), backing
}

func TestBlockIDToFileOffset(t *testing.T) {
	device, _ := newTestDevice(t, 16, 512)

	offset, err := device.BlockIDToFileOffset(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, offset)

	offset, err = device.BlockIDToFileOffset(15)
	require.NoError(t, err)
	assert.EqualValues(t, 15*512, offset)

	_, err = device.BlockIDToFileOffset(16)
	assert.Error(t, err, "block ID past the end of the device must be rejected")
}

func TestCheckIOBounds(t *testing.T) {
	device, _ := newTestDevice(t, 16, 512)

	assert.NoError(t, device.CheckIOBounds(0, 512))
	assert.NoError(t, device.CheckIOBounds(15, 512), "last block must be writable")
	assert.NoError(t, device.CheckIOBounds(0, 16*512))
	assert.Error(t, device.CheckIOBounds(0, 0), "zero-length I/O is invalid")
	assert.Error(t, device.CheckIOBounds(0, 100), "partial blocks are invalid")
	assert.Error(t, device.CheckIOBounds(15, 1024), "I/O can't extend past the device")
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	device, backing := newTestDevice(t, 8, 256)

	payload := bytes.Repeat([]byte{0xa5}, 512)
	require.NoError(t, device.WriteBlocks(3, payload))

	// The write must land at the absolute offset of block 3.
	assert.Equal(t, payload, backing[3*256:5*256])

	readBack, err := device.ReadBlocks(3, 2)
	require.NoError(t, err)
	assert.Equal(t, payload, readBack)
}

func TestWritesUseAbsoluteOffsets(t *testing.T) {
	device, _ := newTestDevice(t, 8, 256)

	first := bytes.Repeat([]byte{1}, 256)
	last := bytes.Repeat([]byte{2}, 256)
	require.NoError(t, device.WriteBlocks(7, last))
	require.NoError(t, device.WriteBlocks(0, first))

	// Order of writes must not matter; each call seeks on its own.
	readBack, err := device.ReadBlocks(7, 1)
	require.NoError(t, err)
	assert.Equal(t, last, readBack)

	readBack, err = device.ReadBlocks(0, 1)
	require.NoError(t, err)
	assert.Equal(t, first, readBack)
}
