package driver

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuperblock(t *testing.T) {
	sb := NewSuperblock()

	assert.EqualValues(t, TotalBlocks, sb.TotalBlocks)
	assert.EqualValues(t, BlockSize, sb.BlockSize)
	assert.EqualValues(t, TotalBlocks-DataBlocksStart, sb.FreeBlocks,
		"every data block must start free")
	assert.EqualValues(t, MaxFiles, sb.TotalInodes)
	assert.EqualValues(t, MaxFiles, sb.FreeInodes)
}

func TestSerializeSuperblockLayout(t *testing.T) {
	sb := Superblock{
		TotalBlocks: 2560,
		BlockSize:   4096,
		FreeBlocks:  1234,
		TotalInodes: 256,
		FreeInodes:  99,
	}

	raw := SerializeSuperblock(sb)
	require.Len(t, raw, SuperblockSize)

	// Five little-endian int32 fields, in declaration order.
	assert.EqualValues(t, 2560, binary.LittleEndian.Uint32(raw[0:4]))
	assert.EqualValues(t, 4096, binary.LittleEndian.Uint32(raw[4:8]))
	assert.EqualValues(t, 1234, binary.LittleEndian.Uint32(raw[8:12]))
	assert.EqualValues(t, 256, binary.LittleEndian.Uint32(raw[12:16]))
	assert.EqualValues(t, 99, binary.LittleEndian.Uint32(raw[16:20]))
}

func TestSuperblockRoundTrip(t *testing.T) {
	original := NewSuperblock()
	original.FreeBlocks = 17
	original.FreeInodes = 3

	restored, err := DeserializeSuperblock(SerializeSuperblock(original))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDeserializeSuperblockShortBuffer(t *testing.T) {
	_, err := DeserializeSuperblock(make([]byte, SuperblockSize-1))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	sb := NewSuperblock()
	assert.NoError(t, sb.Validate())

	// Free counters are summaries and must not fail validation.
	sb.FreeBlocks = 0
	sb.FreeInodes = 0
	assert.NoError(t, sb.Validate())

	sb = NewSuperblock()
	sb.TotalBlocks = 100
	assert.Error(t, sb.Validate())

	sb = NewSuperblock()
	sb.BlockSize = 512
	assert.Error(t, sb.Validate())

	sb = NewSuperblock()
	sb.TotalInodes = 64
	assert.Error(t, sb.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	sb := Superblock{TotalBlocks: 1, BlockSize: 2, TotalInodes: 3}

	err := sb.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total block count")
	assert.Contains(t, err.Error(), "block size")
	assert.Contains(t, err.Error(), "inode table capacity")
}
