// Package blockdev provides fixed-size block I/O over a seekable stream.
//
// Every read and write positions the stream with an absolute offset; no
// "current position" is shared between callers.
package blockdev

import (
	"fmt"
	"io"
)

type BlockID uint

// Device is an abstraction layer around a stream to make it look like a block
// device, e.g. a file that can only be read from or written to in multiples of
// its fundamental unit, a "block".
//
// The exposed fields are for informational purposes only and should never be
// changed.
type Device struct {
	// BlockSize gives the size of a block on this device, in bytes. All reads
	// and writes must be done in integer multiples of this size.
	BlockSize uint
	// TotalBlocks is the total number of blocks in this stream.
	TotalBlocks uint
	// StartOffset is an offset from the beginning of the stream, in bytes, that
	// will be considered the beginning of block 0 for the device.
	StartOffset int64
	stream      io.ReadWriteSeeker
}

func New(stream io.ReadWriteSeeker, totalBlocks uint, blockSize uint) Device {
	return Device{
		BlockSize:   blockSize,
		TotalBlocks: totalBlocks,
		StartOffset: 0,
		stream:      stream,
	}
}

func (device *Device) BlockIDToFileOffset(blockID BlockID) (int64, error) {
	if uint(blockID) >= device.TotalBlocks {
		return -1,
			fmt.Errorf(
				"invalid block ID %d: not in range [0, %d)",
				blockID,
				device.TotalBlocks)
	}
	return device.StartOffset + (int64(blockID) * int64(device.BlockSize)), nil
}

func (device *Device) CheckIOBounds(blockID BlockID, dataLength uint) error {
	if uint(blockID) >= device.TotalBlocks {
		return fmt.Errorf(
			"invalid block ID %d: not in range [0, %d)",
			blockID,
			device.TotalBlocks)
	}

	if dataLength == 0 || dataLength%device.BlockSize != 0 {
		return fmt.Errorf(
			"data must be a non-zero multiple of the block size (%d B), got %d",
			device.BlockSize,
			dataLength)
	}

	dataSizeInBlocks := dataLength / device.BlockSize
	if uint(blockID)+dataSizeInBlocks > device.TotalBlocks {
		return fmt.Errorf(
			"block %d plus %d blocks of data extends past end of image",
			blockID,
			dataSizeInBlocks)
	}

	return nil
}

func (device *Device) seekToBlock(blockID BlockID) error {
	offset, err := device.BlockIDToFileOffset(blockID)
	if err != nil {
		return err
	}
	_, err = device.stream.Seek(offset, io.SeekStart)
	return err
}

// ReadBlocks reads `count` whole blocks starting at `blockID` and returns
// their contents.
func (device *Device) ReadBlocks(blockID BlockID, count uint) ([]byte, error) {
	err := device.CheckIOBounds(blockID, count*device.BlockSize)
	if err != nil {
		return nil, err
	}

	err = device.seekToBlock(blockID)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, device.BlockSize*count)
	bytesRead, err := io.ReadFull(device.stream, buffer)
	if err != nil {
		return nil, fmt.Errorf(
			"short read of block %d: got %d of %d bytes: %w",
			blockID,
			bytesRead,
			len(buffer),
			err)
	}
	return buffer, nil
}

// WriteBlocks writes data to the device. `data` must be a non-zero multiple of
// the block size.
func (device *Device) WriteBlocks(blockID BlockID, data []byte) error {
	err := device.CheckIOBounds(blockID, uint(len(data)))
	if err != nil {
		return err
	}

	err = device.seekToBlock(blockID)
	if err != nil {
		return err
	}

	_, err = device.stream.Write(data)
	return err
}
