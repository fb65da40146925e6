package common

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStreamReadsWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	want := []byte{0x50, 0x47, 0x00, 0x01, 0x02, 0x03}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	stream, err := NewFileStream(path)
	if err != nil {
		t.Fatalf("NewFileStream returned error: %v", err)
	}
	defer stream.Close()

	if !bytes.Equal(stream.Bytes(), want) {
		t.Fatalf("unexpected bytes: %x", stream.Bytes())
	}
	if stream.Size() != int64(len(want)) {
		t.Fatalf("unexpected size: %d", stream.Size())
	}

	if _, err := stream.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	rest, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(rest, want[2:]) {
		t.Fatalf("unexpected read after seek: %x", rest)
	}
}

func TestFileStreamEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	stream, err := NewFileStream(path)
	if err != nil {
		t.Fatalf("NewFileStream returned error: %v", err)
	}
	if stream.Size() != 0 {
		t.Fatalf("expected empty stream, got %d bytes", stream.Size())
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
}

func TestNewFileStreamMissingFile(t *testing.T) {
	if _, err := NewFileStream(filepath.Join(t.TempDir(), "missing.sup")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
