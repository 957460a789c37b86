// Block bitmap allocator

package allocator

import (
	"fmt"

	"github.com/boljen/go-bitmap"
)

// Allocator tracks which blocks of a disk image are in use, one bit per block.
// A set bit means the block is allocated. Blocks below the data start index are
// the metadata region and are permanently reserved; allocation only ever hands
// out blocks in [dataStart, totalBlocks).
//
// The bitmap is the authoritative record of block usage. Counters kept
// elsewhere (the superblock) are summaries of this structure.
type Allocator struct {
	bits        bitmap.Bitmap
	totalBlocks int
	dataStart   int
}

// New creates an allocator for a freshly formatted image: the metadata region
// is marked in use and every data block is free.
func New(totalBlocks, dataStart int) Allocator {
	alloc := Allocator{
		bits:        bitmap.New(totalBlocks),
		totalBlocks: totalBlocks,
		dataStart:   dataStart,
	}
	for i := 0; i < dataStart; i++ {
		alloc.bits.Set(i, true)
	}
	return alloc
}

// FromBytes creates an allocator from the persisted form of the bitmap, as
// read from the disk image.
func FromBytes(raw []byte, totalBlocks, dataStart int) (Allocator, error) {
	if len(raw)*8 < totalBlocks {
		return Allocator{}, fmt.Errorf(
			"bitmap too small: %d bytes can't track %d blocks",
			len(raw),
			totalBlocks)
	}

	buf := make([]byte, (totalBlocks+7)/8)
	copy(buf, raw)
	return Allocator{
		bits:        bitmap.Bitmap(buf),
		totalBlocks: totalBlocks,
		dataStart:   dataStart,
	}, nil
}

// Bytes returns the persisted form of the bitmap. The slice aliases the
// allocator's storage; callers must copy it if they need a snapshot.
func (alloc *Allocator) Bytes() []byte {
	return alloc.bits.Data(false)
}

func (alloc *Allocator) TotalBlocks() int {
	return alloc.totalBlocks
}

func (alloc *Allocator) InUse(block int32) bool {
	if block < 0 || int(block) >= alloc.totalBlocks {
		return false
	}
	return alloc.bits.Get(int(block))
}

// FindFree scans the data-block range in index order and returns the first
// free block. The second return value is false when every data block is in
// use.
func (alloc *Allocator) FindFree() (int32, bool) {
	for i := alloc.dataStart; i < alloc.totalBlocks; i++ {
		if !alloc.bits.Get(i) {
			return int32(i), true
		}
	}
	return 0, false
}

// MarkUsed sets the bit for `block`. Out-of-range indices are ignored.
func (alloc *Allocator) MarkUsed(block int32) {
	if block < 0 || int(block) >= alloc.totalBlocks {
		return
	}
	alloc.bits.Set(int(block), true)
}

// MarkFree clears the bit for `block`. Out-of-range indices are ignored.
func (alloc *Allocator) MarkFree(block int32) {
	if block < 0 || int(block) >= alloc.totalBlocks {
		return
	}
	alloc.bits.Set(int(block), false)
}

// FreeCount returns the number of free blocks in the data-block range.
func (alloc *Allocator) FreeCount() int {
	count := 0
	for i := alloc.dataStart; i < alloc.totalBlocks; i++ {
		if !alloc.bits.Get(i) {
			count++
		}
	}
	return count
}

// ReservedInUse reports whether every block of the metadata region is marked
// allocated. A valid image always has the full region marked.
func (alloc *Allocator) ReservedInUse() bool {
	for i := 0; i < alloc.dataStart; i++ {
		if !alloc.bits.Get(i) {
			return false
		}
	}
	return true
}
