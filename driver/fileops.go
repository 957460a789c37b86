package driver

import (
	"fmt"

	"github.com/dargueta/onlyfiles/blockdev"
	"github.com/dargueta/onlyfiles/errors"
)

// FileInfo summarizes one used inode for listings.
type FileInfo struct {
	Name   string `csv:"name"`
	Size   int32  `csv:"size"`
	Blocks int    `csv:"blocks"`
}

// CreateFile allocates an inode for a new, empty file. No data blocks are
// allocated until the first write.
func (drv *Driver) CreateFile(name string) error {
	if err := drv.requireMounted(); err != nil {
		return err
	}
	if _, err := FilenameToBytes(name); err != nil {
		return err
	}

	if _, exists := drv.findInode(name); exists {
		return errors.NewWithMessage(errors.EEXIST, name)
	}

	slot, ok := drv.findFreeInode()
	if !ok {
		return errors.NewWithMessage(errors.EMFILE, "inode table is full")
	}

	ino := NewInode()
	ino.Used = true
	ino.Name = name
	drv.inodes[slot] = ino
	if err := drv.flushInode(slot); err != nil {
		return err
	}

	drv.sb.FreeInodes--
	return drv.flushSuperblock()
}

// DeleteFile removes a file, returning its inode and data blocks to the free
// pools.
func (drv *Driver) DeleteFile(name string) error {
	if err := drv.requireMounted(); err != nil {
		return err
	}
	if _, err := FilenameToBytes(name); err != nil {
		return err
	}

	index, ok := drv.findInode(name)
	if !ok {
		return errors.NewWithMessage(errors.ENOENT, name)
	}

	ino := drv.inodes[index]
	freed := int32(0)
	for j, block := range ino.Blocks {
		if block != NoBlock {
			drv.alloc.MarkFree(block)
			ino.Blocks[j] = NoBlock
			freed++
		}
	}
	ino.Used = false
	ino.Size = 0
	ino.Name = ""

	drv.inodes[index] = ino
	if err := drv.flushBitmap(); err != nil {
		return err
	}
	if err := drv.flushInode(index); err != nil {
		return err
	}

	drv.sb.FreeBlocks += freed
	drv.sb.FreeInodes++
	return drv.flushSuperblock()
}

// ListFiles returns the names of up to `max` files, in inode-table order.
// Names wider than the output width are truncated to MaxFilenameLength-1
// bytes, and duplicate names from a damaged table are emitted only once.
func (drv *Driver) ListFiles(max int) ([]string, error) {
	if err := drv.requireMounted(); err != nil {
		return nil, err
	}
	if max <= 0 || max > MaxFiles {
		return nil, errors.NewWithMessage(errors.EINVAL, fmt.Sprintf(
			"listing capacity must be in (0, %d], got %d", MaxFiles, max))
	}

	seen := make(map[string]bool, max)
	names := make([]string, 0, max)
	for i := range drv.inodes {
		if len(names) == max {
			break
		}
		if !drv.inodes[i].Used {
			continue
		}

		name := drv.inodes[i].Name
		if len(name) > MaxFilenameLength-1 {
			name = name[:MaxFilenameLength-1]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// Files returns a listing of every used inode with its size and block count.
func (drv *Driver) Files() ([]FileInfo, error) {
	if err := drv.requireMounted(); err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, MaxFiles)
	for i := range drv.inodes {
		if !drv.inodes[i].Used {
			continue
		}
		infos = append(infos, FileInfo{
			Name:   drv.inodes[i].Name,
			Size:   drv.inodes[i].Size,
			Blocks: drv.inodes[i].CountBlocks(),
		})
	}
	return infos, nil
}

// WriteFile replaces the contents of `name` with `data`. The file's current
// blocks are reclaimed first and count toward the space available for the new
// payload.
//
// If space runs out partway through, the inode is persisted with the blocks it
// managed to acquire, so every bit set in the bitmap stays owned by an inode.
// The file then reports the requested size while holding only a prefix of the
// payload; a later successful write replaces it cleanly.
func (drv *Driver) WriteFile(name string, data []byte) error {
	if err := drv.requireMounted(); err != nil {
		return err
	}
	if _, err := FilenameToBytes(name); err != nil {
		return err
	}
	if data == nil {
		return errors.NewWithMessage(errors.EINVAL, "data buffer is nil")
	}

	index, ok := drv.findInode(name)
	if !ok {
		return errors.NewWithMessage(errors.ENOENT, name)
	}

	size := len(data)
	need := (size + BlockSize - 1) / BlockSize
	if need > MaxDirectBlocks {
		return errors.NewWithMessage(errors.EFBIG, fmt.Sprintf(
			"%d bytes exceeds the %d-byte file size cap", size, MaxFileSize))
	}

	ino := drv.inodes[index]
	old := int32(ino.CountBlocks())

	// The superblock's counter is a summary; when the bitmap disagrees
	// downward, the bitmap wins.
	if free := int32(drv.alloc.FreeCount()); free < drv.sb.FreeBlocks {
		drv.sb.FreeBlocks = free
		if err := drv.flushSuperblock(); err != nil {
			return err
		}
	}

	if int32(need) > drv.sb.FreeBlocks+old {
		return errors.NewWithMessage(errors.ENOSPC, fmt.Sprintf(
			"need %d blocks, %d free", need, drv.sb.FreeBlocks+old))
	}

	// Reclaim the current blocks; the new payload replaces them outright.
	for j, block := range ino.Blocks {
		if block != NoBlock {
			drv.alloc.MarkFree(block)
			ino.Blocks[j] = NoBlock
		}
	}
	ino.Size = int32(size)
	drv.sb.FreeBlocks += old
	if err := drv.flushBitmap(); err != nil {
		return err
	}
	if err := drv.flushSuperblock(); err != nil {
		return err
	}

	for i := 0; i < need; i++ {
		block, found, err := drv.findFreeBlock()
		if err != nil {
			return err
		}
		if !found {
			// Keep the blocks acquired so far owned by this inode; orphaned
			// bitmap bits are never allowed.
			drv.inodes[index] = ino
			if err := drv.flushInode(index); err != nil {
				return err
			}
			if err := drv.flushBitmap(); err != nil {
				return err
			}
			if err := drv.flushSuperblock(); err != nil {
				return err
			}
			return errors.NewWithMessage(errors.ENOSPC, fmt.Sprintf(
				"ran out of space after %d of %d blocks", i, need))
		}

		ino.Blocks[i] = block
		drv.alloc.MarkUsed(block)
		drv.sb.FreeBlocks--

		end := (i + 1) * BlockSize
		if end > size {
			end = size
		}
		payload := make([]byte, BlockSize)
		copy(payload, data[i*BlockSize:end])
		if err := drv.dev.WriteBlocks(blockdev.BlockID(block), payload); err != nil {
			return errors.NewFromError(errors.EIO, err)
		}
	}

	ino.Used = true
	drv.inodes[index] = ino
	if err := drv.flushInode(index); err != nil {
		return err
	}
	if err := drv.flushBitmap(); err != nil {
		return err
	}
	return drv.flushSuperblock()
}

// ReadFile copies up to len(buffer) bytes of `name` into `buffer` and returns
// the number of bytes copied. Reads past the stored size are clamped.
func (drv *Driver) ReadFile(name string, buffer []byte) (int, error) {
	if err := drv.requireMounted(); err != nil {
		return 0, err
	}
	if _, err := FilenameToBytes(name); err != nil {
		return 0, err
	}
	if buffer == nil {
		return 0, errors.NewWithMessage(errors.EINVAL, "read buffer is nil")
	}

	index, ok := drv.findInode(name)
	if !ok {
		return 0, errors.NewWithMessage(errors.ENOENT, name)
	}

	ino := drv.inodes[index]
	size := len(buffer)
	if int32(size) > ino.Size {
		size = int(ino.Size)
	}

	copied := 0
	for _, block := range ino.Blocks {
		if copied >= size {
			break
		}
		if block == NoBlock {
			continue
		}

		blockData, err := drv.dev.ReadBlocks(blockdev.BlockID(block), 1)
		if err != nil {
			return copied, errors.NewFromError(errors.EIO, err)
		}

		n := size - copied
		if n > BlockSize {
			n = BlockSize
		}
		copy(buffer[copied:], blockData[:n])
		copied += n
	}
	return copied, nil
}

// FreeBlockCount reports the superblock's current free-block counter.
func (drv *Driver) FreeBlockCount() (int32, error) {
	if err := drv.requireMounted(); err != nil {
		return 0, err
	}
	return drv.sb.FreeBlocks, nil
}
