package common

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/edsrzf/mmap-go"
)

// FileStream is a read-only view of a whole file. The file is memory mapped
// when the platform allows it and read into memory otherwise.
type FileStream struct {
	data           []byte
	filePosition   int64
	isMemoryMapped bool
	isOpen         bool
	mmapFile       mmap.MMap
}

func NewFileStream(path string) (*FileStream, error) {
	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, errors.Wrapf(openErr, "failed to open file %s", path)
	}

	defer file.Close()

	stat, statErr := file.Stat()
	if statErr != nil {
		return nil, errors.Wrapf(statErr, "failed to read information while opening file %s", path)
	}

	//mmap refuses empty files
	if stat.Size() > 0 {
		mapped, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
		if mmapErr == nil {
			return &FileStream{data: mapped, isMemoryMapped: true, isOpen: true, mmapFile: mapped}, nil
		}
	}

	data, readErr := io.ReadAll(file)
	if readErr != nil {
		return nil, errors.Wrapf(readErr, "failed to read file %s", path)
	}

	return &FileStream{data: data, isOpen: true}, nil
}

// Bytes returns the file contents. The slice is only valid until Close.
func (f *FileStream) Bytes() []byte {
	return f.data
}

func (f *FileStream) Close() error {
	if !f.isOpen {
		return nil
	}

	f.filePosition = -1
	f.isOpen = false
	f.data = nil

	if f.isMemoryMapped {
		unmapErr := f.mmapFile.Unmap()
		f.mmapFile = nil
		if unmapErr != nil {
			return errors.Wrap(unmapErr, "failed to unmap file")
		}
	}

	return nil
}

func (f *FileStream) IsMemoryMapped() bool {
	return f.isMemoryMapped
}

func (f *FileStream) Position() int64 {
	return f.filePosition
}

func (f *FileStream) Read(b []byte) (int, error) {
	if !f.isOpen {
		return 0, errors.New("read from closed file stream")
	}
	if f.filePosition >= int64(len(f.data)) {
		return 0, io.EOF
	}

	bytesCopied := copy(b, f.data[f.filePosition:])
	f.filePosition += int64(bytesCopied)

	return bytesCopied, nil
}

func (f *FileStream) Seek(offset int64, whence int) (int64, error) {
	var position int64
	switch whence {
	case io.SeekCurrent:
		position = f.filePosition + offset
	case io.SeekEnd:
		position = int64(len(f.data)) + offset
	case io.SeekStart:
		position = offset
	default:
		return f.filePosition, errors.Newf("invalid whence %d", whence)
	}

	if position < 0 {
		return f.filePosition, errors.Newf("negative seek position %d", position)
	}

	f.filePosition = position

	return f.filePosition, nil
}

func (f *FileStream) Size() int64 {
	return int64(len(f.data))
}
