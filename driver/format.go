package driver

import (
	"encoding/binary"
	"io"

	"github.com/noxer/bytewriter"

	"github.com/dargueta/onlyfiles/allocator"
	"github.com/dargueta/onlyfiles/errors"
)

// Format writes a canonical empty file system to the backing stream: a
// superblock with full free counters, a bitmap with only the metadata region
// marked, and an inode table of free records. The image is sized to exactly
// ImageSize bytes.
//
// The driver is left unmounted; call Mount to start using the image.
func (drv *Driver) Format() error {
	if drv.isMounted {
		return errors.NewWithMessage(
			errors.EBUSY,
			"image must be unmounted before it can be formatted")
	}

	// Size the backing file by writing its final byte.
	if _, err := drv.stream.Seek(ImageSize-1, io.SeekStart); err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	if _, err := drv.stream.Write([]byte{0}); err != nil {
		return errors.NewFromError(errors.EIO, err)
	}

	// Lay out the whole metadata region in one buffer, then write it as a
	// single run of blocks.
	region := make([]byte, DataBlocksStart*BlockSize)
	writer := bytewriter.New(region)

	sb := NewSuperblock()
	binary.Write(writer, binary.LittleEndian, &sb)
	writer.Write(make([]byte, BlockSize-SuperblockSize))

	alloc := allocator.New(TotalBlocks, DataBlocksStart)
	writer.Write(alloc.Bytes())
	writer.Write(make([]byte, BlockSize-BitmapSize))

	freeInode, err := SerializeInode(NewInode())
	if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	for i := 0; i < MaxFiles; i++ {
		writer.Write(freeInode)
	}

	if err := drv.dev.WriteBlocks(SuperblockIndex, region); err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	return nil
}
