package storage

import (
	"path/filepath"
	"testing"
)

func TestDiskManagerRoundTrip(t *testing.T) {
	dm, err := NewDiskManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDiskManager: %v", err)
	}
	defer dm.Close()

	var buf [PageSize]byte
	copy(buf[:], "hello disk manager")
	if err := dm.WritePage(3, &buf); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	var out [PageSize]byte
	if err := dm.ReadPage(3, &out); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if out != buf {
		t.Fatal("read back bytes did not match what was written")
	}
}

func TestDiskManagerReadBeyondEOFIsZero(t *testing.T) {
	dm, err := NewDiskManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDiskManager: %v", err)
	}
	defer dm.Close()

	var out [PageSize]byte
	out[0] = 0xFF // prove ReadPage actually overwrites the buffer
	if err := dm.ReadPage(7, &out); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d: expected zero for unwritten page, got %d", i, b)
		}
	}
}

func TestDiskManagerStats(t *testing.T) {
	dm, err := NewDiskManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDiskManager: %v", err)
	}
	defer dm.Close()

	var buf [PageSize]byte
	dm.WritePage(0, &buf)
	dm.WritePage(1, &buf)
	dm.ReadPage(0, &buf)

	stats := dm.Stats()
	if stats["total_writes"] != 2 {
		t.Errorf("total_writes = %d, want 2", stats["total_writes"])
	}
	if stats["total_reads"] != 1 {
		t.Errorf("total_reads = %d, want 1", stats["total_reads"])
	}
}
