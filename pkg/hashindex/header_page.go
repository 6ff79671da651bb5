package hashindex

import (
	"encoding/binary"

	"github.com/relio-db/diskcore/pkg/storage"
)

// headerPageHeaderSize is the width of HeaderPage's fixed prefix:
// max_depth (uint32).
const headerPageHeaderSize = 4

// MaxHeaderDepth bounds header_max_depth so that 2^depth directory
// page ids (8 bytes each) plus the header prefix fit in one page.
const MaxHeaderDepth = 8

// HeaderPage is a typed view over a page's raw bytes: the root of the
// index, mapping the top header_max_depth bits of a key's hash to a
// directory page id. Directory ids are allocated lazily, so a fresh
// header starts out pointing nowhere.
type HeaderPage struct {
	data *[storage.PageSize]byte
}

// NewHeaderPage views a guarded page's bytes as a header page. The
// caller owns the guard and its latch; this type only interprets the
// bytes it's handed.
func NewHeaderPage(data *[storage.PageSize]byte) HeaderPage {
	return HeaderPage{data: data}
}

// Init sets max_depth and marks every directory slot invalid.
func (h HeaderPage) Init(maxDepth uint32) {
	binary.LittleEndian.PutUint32(h.data[0:4], maxDepth)
	n := uint32(1) << maxDepth
	for i := uint32(0); i < n; i++ {
		h.SetDirectoryPageID(i, storage.InvalidPageID)
	}
}

// MaxDepth returns the header's configured depth.
func (h HeaderPage) MaxDepth() uint32 {
	return binary.LittleEndian.Uint32(h.data[0:4])
}

// HashToDirectoryIndex takes the top MaxDepth bits of hash.
func (h HeaderPage) HashToDirectoryIndex(hash uint32) uint32 {
	maxDepth := h.MaxDepth()
	if maxDepth == 0 {
		return 0
	}
	return hash >> (32 - maxDepth)
}

func (h HeaderPage) directoryOffset(idx uint32) int {
	return headerPageHeaderSize + int(idx)*8
}

// GetDirectoryPageID returns the directory page id at idx, or
// InvalidPageID if none has been allocated yet.
func (h HeaderPage) GetDirectoryPageID(idx uint32) storage.PageID {
	off := h.directoryOffset(idx)
	return storage.PageID(binary.LittleEndian.Uint64(h.data[off : off+8]))
}

// SetDirectoryPageID records the directory page id at idx.
func (h HeaderPage) SetDirectoryPageID(idx uint32, id storage.PageID) {
	off := h.directoryOffset(idx)
	binary.LittleEndian.PutUint64(h.data[off:off+8], uint64(id))
}
