package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// DiskManager is the external collaborator the buffer pool's disk
// scheduler submits reads and writes to. It knows nothing about pins,
// latches, or page ids beyond "an offset in a flat file": allocation
// and eviction are the buffer pool's concern, not this one's.
type DiskManager struct {
	mu          sync.Mutex
	dataFile    *os.File
	totalReads  int64
	totalWrites int64
}

// NewDiskManager opens (creating if absent) the backing file at path.
func NewDiskManager(path string) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	return &DiskManager{dataFile: file}, nil
}

// ReadPage reads PageSize bytes for pageID into buf. A page beyond the
// current end of file reads as all zeros, which is how a freshly
// allocated page looks the first time it is fetched from disk.
func (dm *DiskManager) ReadPage(pageID PageID, buf *[PageSize]byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset := int64(pageID) * PageSize
	n, err := dm.dataFile.ReadAt(buf[:], offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read page %d: %w", pageID, err)
	}
	for i := n; i < PageSize; i++ {
		buf[i] = 0
	}
	dm.totalReads++
	return nil
}

// WritePage durably writes buf to pageID's slot.
func (dm *DiskManager) WritePage(pageID PageID, buf *[PageSize]byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset := int64(pageID) * PageSize
	if _, err := dm.dataFile.WriteAt(buf[:], offset); err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageID, err)
	}
	dm.totalWrites++
	return nil
}

// Sync flushes the backing file to stable storage.
func (dm *DiskManager) Sync() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.dataFile.Sync()
}

// Close syncs and closes the backing file.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if err := dm.dataFile.Sync(); err != nil {
		return err
	}
	return dm.dataFile.Close()
}

// Stats reports cumulative read/write counts.
func (dm *DiskManager) Stats() map[string]int64 {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return map[string]int64{
		"total_reads":  dm.totalReads,
		"total_writes": dm.totalWrites,
	}
}
