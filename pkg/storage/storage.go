package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// DefaultReplacerK is the K used by the LRU-K replacer when a Config
// leaves ReplacerK unset.
const DefaultReplacerK = 2

// Engine is the storage-layer entry point: a disk manager, the
// scheduler it backs, and a buffer pool manager over both, opened
// against one data directory. A log-manager reference would thread
// through here in a fuller system; this module carries no such
// dependency, since WAL integration is out of scope.
type Engine struct {
	mu         sync.Mutex
	diskMgr    *DiskManager
	bufferPool *BufferPoolManager
	dataDir    string
	isOpen     bool
}

// Config holds storage engine configuration.
type Config struct {
	DataDir string

	// SegmentFile names the backing file within DataDir. If empty, a
	// fresh name is generated with uuid so repeated opens of the same
	// directory with the zero Config don't collide.
	SegmentFile string

	// BufferPoolSize is the number of frames the buffer pool holds.
	BufferPoolSize int

	// ReplacerK is the K in LRU-K. Defaults to DefaultReplacerK if <= 0.
	ReplacerK int
}

// DefaultConfig returns a Config for dataDir with a 1000-frame pool
// (~4MB) and K=2, the shape the reference system ships with.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir:        dataDir,
		BufferPoolSize: 1000,
		ReplacerK:      DefaultReplacerK,
	}
}

// NewEngine opens (creating if absent) a storage engine rooted at
// config.DataDir.
func NewEngine(config *Config) (*Engine, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	segment := config.SegmentFile
	if segment == "" {
		segment = uuid.NewString() + ".db"
	}

	diskMgr, err := NewDiskManager(filepath.Join(config.DataDir, segment))
	if err != nil {
		return nil, fmt.Errorf("failed to create disk manager: %w", err)
	}

	replacerK := config.ReplacerK
	if replacerK <= 0 {
		replacerK = DefaultReplacerK
	}

	return &Engine{
		diskMgr:    diskMgr,
		bufferPool: NewBufferPoolManager(config.BufferPoolSize, diskMgr, replacerK),
		dataDir:    config.DataDir,
		isOpen:     true,
	}, nil
}

// BufferPool exposes the engine's buffer pool manager to callers (the
// hash index, in this module) that drive it directly through guards.
func (e *Engine) BufferPool() *BufferPoolManager {
	return e.bufferPool
}

// Checkpoint flushes every dirty page and syncs the backing file.
func (e *Engine) Checkpoint() error {
	e.bufferPool.FlushAllPages()
	if err := e.diskMgr.Sync(); err != nil {
		return fmt.Errorf("failed to sync disk: %w", err)
	}
	return nil
}

// Close flushes all dirty pages, stops the disk scheduler, and closes
// the backing file. Calling Close twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOpen {
		return nil
	}

	e.bufferPool.FlushAllPages()
	e.bufferPool.Shutdown()

	if err := e.diskMgr.Close(); err != nil {
		return fmt.Errorf("failed to close disk manager: %w", err)
	}

	e.isOpen = false
	return nil
}

// Stats reports disk manager I/O counters.
func (e *Engine) Stats() map[string]int64 {
	return e.diskMgr.Stats()
}
