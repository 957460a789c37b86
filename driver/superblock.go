package driver

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// SuperblockSize is the number of meaningful bytes at the start of block 0.
// The rest of the block is zero padding.
const SuperblockSize = 20

// Superblock is the accounting header persisted at block 0. The free counters
// are summaries of the bitmap and the inode table; the bitmap and table are
// authoritative when they disagree.
type Superblock struct {
	TotalBlocks int32
	BlockSize   int32
	FreeBlocks  int32
	TotalInodes int32
	FreeInodes  int32
}

// NewSuperblock returns the superblock of a freshly formatted, empty image.
func NewSuperblock() Superblock {
	return Superblock{
		TotalBlocks: TotalBlocks,
		BlockSize:   BlockSize,
		FreeBlocks:  TotalBlocks - DataBlocksStart,
		TotalInodes: MaxFiles,
		FreeInodes:  MaxFiles,
	}
}

// SerializeSuperblock renders the superblock in its on-disk form: five
// little-endian 32-bit integers.
func SerializeSuperblock(sb Superblock) []byte {
	buffer := bytes.NewBuffer(make([]byte, 0, SuperblockSize))
	binary.Write(buffer, binary.LittleEndian, &sb)
	return buffer.Bytes()
}

// DeserializeSuperblock decodes a superblock from the start of `raw`.
func DeserializeSuperblock(raw []byte) (Superblock, error) {
	var sb Superblock
	if len(raw) < SuperblockSize {
		return sb, fmt.Errorf(
			"superblock needs %d bytes, got %d", SuperblockSize, len(raw))
	}

	reader := bytes.NewReader(raw[:SuperblockSize])
	if err := binary.Read(reader, binary.LittleEndian, &sb); err != nil {
		return sb, err
	}
	return sb, nil
}

// Validate checks the capacity constants against the compiled-in layout. The
// free counters are deliberately not checked here; they are summaries that the
// allocator corrects at run time.
func (sb *Superblock) Validate() error {
	var result error

	if sb.TotalBlocks != TotalBlocks {
		result = multierror.Append(result, fmt.Errorf(
			"total block count is %d, expected %d", sb.TotalBlocks, TotalBlocks))
	}
	if sb.BlockSize != BlockSize {
		result = multierror.Append(result, fmt.Errorf(
			"block size is %d, expected %d", sb.BlockSize, BlockSize))
	}
	if sb.TotalInodes != MaxFiles {
		result = multierror.Append(result, fmt.Errorf(
			"inode table capacity is %d, expected %d", sb.TotalInodes, MaxFiles))
	}
	return result
}
