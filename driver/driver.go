package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/dargueta/onlyfiles/allocator"
	"github.com/dargueta/onlyfiles/blockdev"
	"github.com/dargueta/onlyfiles/errors"
)

// InodesPerBlock is the number of inode records stored in one block of the
// inode table.
const InodesPerBlock = BlockSize / InodeSize

// Driver owns one disk image and implements every file operation on it. A
// driver must be mounted before any operation other than Format; mounting
// validates the image and loads the metadata structures.
//
// Every mutation is written back to the image before the operation returns, so
// a successful operation leaves the image in the state the next mount will
// see. There is no write-back cache.
type Driver struct {
	stream    io.ReadWriteSeeker
	dev       blockdev.Device
	sb        Superblock
	alloc     allocator.Allocator
	inodes    [MaxFiles]Inode
	isMounted bool
}

// NewDriverFromStream creates a driver on an arbitrary seekable stream, such
// as an in-memory image.
func NewDriverFromStream(stream io.ReadWriteSeeker) *Driver {
	return &Driver{
		stream: stream,
		dev:    blockdev.New(stream, TotalBlocks, BlockSize),
	}
}

// NewDriverFromFile creates a driver on an open disk image file. The driver
// does not take ownership of the handle; the caller closes it after Unmount.
func NewDriverFromFile(file *os.File) *Driver {
	return NewDriverFromStream(file)
}

// Mount reads the superblock, bitmap, and inode table from the image and
// validates them. All validation problems are reported together. On failure
// the driver's state is unchanged.
func (drv *Driver) Mount() error {
	if drv.isMounted {
		return errors.ErrAlreadyInProgress
	}

	sbBlock, err := drv.dev.ReadBlocks(SuperblockIndex, 1)
	if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	sb, err := DeserializeSuperblock(sbBlock)
	if err != nil {
		return errors.NewFromError(errors.EUCLEAN, err)
	}

	var problems error
	if err := sb.Validate(); err != nil {
		problems = multierror.Append(problems, err)
	}

	bitmapBlock, err := drv.dev.ReadBlocks(BitmapBlockIndex, 1)
	if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	alloc, err := allocator.FromBytes(bitmapBlock[:BitmapSize], TotalBlocks, DataBlocksStart)
	if err != nil {
		return errors.NewFromError(errors.EUCLEAN, err)
	}
	if !alloc.ReservedInUse() {
		problems = multierror.Append(problems, fmt.Errorf(
			"metadata blocks [0, %d) are not all marked allocated", DataBlocksStart))
	}

	tableBlocks, err := drv.dev.ReadBlocks(InodeTableStart, InodeTableBlocks)
	if err != nil {
		return errors.NewFromError(errors.EIO, err)
	}

	var inodes [MaxFiles]Inode
	for i := 0; i < MaxFiles; i++ {
		ino, err := DeserializeInode(tableBlocks[i*InodeSize:])
		if err != nil {
			problems = multierror.Append(problems, fmt.Errorf("inode %d: %w", i, err))
			continue
		}
		if ino.Used && ino.Size < 0 {
			problems = multierror.Append(problems, fmt.Errorf(
				"inode %d (%q) has negative size %d", i, ino.Name, ino.Size))
		}
		inodes[i] = ino
	}

	if problems != nil {
		return errors.NewFromError(errors.EUCLEAN, problems)
	}

	drv.sb = sb
	drv.alloc = alloc
	drv.inodes = inodes
	drv.isMounted = true
	return nil
}

// Unmount marks the driver unusable until the next Mount. The backing handle
// belongs to the caller and is not closed here. Every mutation was flushed
// when it happened, so there is nothing to write out.
func (drv *Driver) Unmount() error {
	drv.isMounted = false
	return nil
}

// IsMounted reports whether the driver currently has a validated image.
func (drv *Driver) IsMounted() bool {
	return drv.isMounted
}

// FSStat returns a summary of the mounted file system.
func (drv *Driver) FSStat() FSStat {
	return FSStat{
		BlockSize:     BlockSize,
		TotalBlocks:   TotalBlocks,
		BlocksFree:    uint64(drv.sb.FreeBlocks),
		Files:         uint64(MaxFiles - drv.sb.FreeInodes),
		FilesFree:     uint64(drv.sb.FreeInodes),
		MaxNameLength: MaxFilenameLength,
	}
}

func (drv *Driver) requireMounted() error {
	if !drv.isMounted {
		return errors.ErrNotMounted
	}
	return nil
}

// findInode returns the index of the used inode with the given name.
func (drv *Driver) findInode(name string) (int, bool) {
	for i := range drv.inodes {
		if drv.inodes[i].Used && drv.inodes[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// findFreeInode returns the lowest free slot in the inode table.
func (drv *Driver) findFreeInode() (int, bool) {
	for i := range drv.inodes {
		if !drv.inodes[i].Used {
			return i, true
		}
	}
	return 0, false
}

// findFreeBlock hands out the first free data block. When the bitmap is full
// but the cached counter claims otherwise, the counter is corrected and
// persisted; the bitmap is authoritative.
func (drv *Driver) findFreeBlock() (int32, bool, error) {
	block, ok := drv.alloc.FindFree()
	if !ok && drv.sb.FreeBlocks > 0 {
		drv.sb.FreeBlocks = 0
		if err := drv.flushSuperblock(); err != nil {
			return 0, false, err
		}
	}
	return block, ok, nil
}

func (drv *Driver) flushSuperblock() error {
	buffer := make([]byte, BlockSize)
	copy(buffer, SerializeSuperblock(drv.sb))
	if err := drv.dev.WriteBlocks(SuperblockIndex, buffer); err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	return nil
}

func (drv *Driver) flushBitmap() error {
	buffer := make([]byte, BlockSize)
	copy(buffer, drv.alloc.Bytes())
	if err := drv.dev.WriteBlocks(BitmapBlockIndex, buffer); err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	return nil
}

// flushInode rewrites the single inode-table block containing slot `index`.
func (drv *Driver) flushInode(index int) error {
	blockInTable := index / InodesPerBlock
	first := blockInTable * InodesPerBlock

	buffer := make([]byte, BlockSize)
	for i := 0; i < InodesPerBlock; i++ {
		raw, err := SerializeInode(drv.inodes[first+i])
		if err != nil {
			return errors.NewFromError(errors.EIO, err)
		}
		copy(buffer[i*InodeSize:], raw)
	}

	target := blockdev.BlockID(InodeTableStart + blockInTable)
	if err := drv.dev.WriteBlocks(target, buffer); err != nil {
		return errors.NewFromError(errors.EIO, err)
	}
	return nil
}
