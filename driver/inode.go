package driver

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dargueta/onlyfiles/errors"
)

// InodeSize is the on-disk footprint of one inode record. 32 records fit in a
// block, so the full table of 256 occupies blocks 2-9.
const InodeSize = 128

// Inode describes one file: liveness, name, size in bytes, and the list of
// direct block pointers. Unused pointer slots hold NoBlock.
type Inode struct {
	Used   bool
	Name   string
	Size   int32
	Blocks [MaxDirectBlocks]int32
}

// rawInode is the on-disk form of an inode record.
type rawInode struct {
	Used     uint32
	Name     [MaxFilenameLength]byte
	Size     int32
	Blocks   [MaxDirectBlocks]int32
	Reserved [44]byte
}

// NewInode returns a free inode with an empty block list.
func NewInode() Inode {
	ino := Inode{}
	ino.ClearBlockList()
	return ino
}

// ClearBlockList resets every block pointer to the empty sentinel.
func (ino *Inode) ClearBlockList() {
	for j := range ino.Blocks {
		ino.Blocks[j] = NoBlock
	}
}

// CountBlocks returns the number of allocated block pointers.
func (ino *Inode) CountBlocks() int {
	count := 0
	for _, block := range ino.Blocks {
		if block != NoBlock {
			count++
		}
	}
	return count
}

// FilenameToBytes converts a filename string to its on-disk representation, a
// fixed-width field with null-terminator semantics. A name may occupy the full
// width of the field.
func FilenameToBytes(name string) ([MaxFilenameLength]byte, error) {
	var field [MaxFilenameLength]byte

	if name == "" {
		return field, errors.NewWithMessage(errors.EINVAL, "filename is empty")
	}
	if len(name) > MaxFilenameLength {
		message := fmt.Sprintf(
			"filename can be at most %d bytes: %q", MaxFilenameLength, name)
		return field, errors.NewWithMessage(errors.ENAMETOOLONG, message)
	}

	copy(field[:], name)
	return field, nil
}

// BytesToFilename converts the on-disk representation of a filename into its
// string form, enforcing termination at the first null byte.
func BytesToFilename(field [MaxFilenameLength]byte) string {
	end := bytes.IndexByte(field[:], 0)
	if end < 0 {
		end = MaxFilenameLength
	}
	return string(field[:end])
}

// SerializeInode renders an inode in its on-disk form.
func SerializeInode(ino Inode) ([]byte, error) {
	nameField, err := FilenameToBytes(ino.Name)
	if err != nil && ino.Used {
		return nil, err
	}

	raw := rawInode{
		Name:   nameField,
		Size:   ino.Size,
		Blocks: ino.Blocks,
	}
	if ino.Used {
		raw.Used = 1
	}

	buffer := bytes.NewBuffer(make([]byte, 0, InodeSize))
	if err := binary.Write(buffer, binary.LittleEndian, &raw); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DeserializeInode decodes one inode record from the start of `data`.
func DeserializeInode(data []byte) (Inode, error) {
	var raw rawInode
	if len(data) < InodeSize {
		return Inode{}, fmt.Errorf(
			"inode record needs %d bytes, got %d", InodeSize, len(data))
	}

	reader := bytes.NewReader(data[:InodeSize])
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return Inode{}, err
	}

	return Inode{
		Used:   raw.Used != 0,
		Name:   BytesToFilename(raw.Name),
		Size:   raw.Size,
		Blocks: raw.Blocks,
	}, nil
}
