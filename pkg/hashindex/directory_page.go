package hashindex

import (
	"encoding/binary"

	"github.com/relio-db/diskcore/pkg/storage"
)

// directoryPageHeaderSize is the width of DirectoryPage's fixed
// prefix: max_depth (uint32), global_depth (uint32).
const directoryPageHeaderSize = 8

// MaxDirectoryDepth bounds directory_max_depth so that 2^depth bucket
// page ids (8 bytes) plus 2^depth local depths (1 byte) plus the
// header prefix fit in one page.
const MaxDirectoryDepth = 8

// DirectoryPage is a typed view over a page's raw bytes: global_depth,
// max_depth, and the parallel bucket_page_ids/local_depths arrays
// sized 2^max_depth.
type DirectoryPage struct {
	data *[storage.PageSize]byte
}

// NewDirectoryPage views a guarded page's bytes as a directory page.
func NewDirectoryPage(data *[storage.PageSize]byte) DirectoryPage {
	return DirectoryPage{data: data}
}

// Init sets max_depth, zeroes global_depth, and marks every bucket
// slot invalid with local_depth 0.
func (d DirectoryPage) Init(maxDepth uint32) {
	binary.LittleEndian.PutUint32(d.data[0:4], maxDepth)
	binary.LittleEndian.PutUint32(d.data[4:8], 0)
	n := uint32(1) << maxDepth
	for i := uint32(0); i < n; i++ {
		d.SetBucketPageID(i, storage.InvalidPageID)
		d.SetLocalDepth(i, 0)
	}
}

// MaxDepth returns the directory's configured ceiling.
func (d DirectoryPage) MaxDepth() uint32 {
	return binary.LittleEndian.Uint32(d.data[0:4])
}

// GlobalDepth returns the number of hash bits currently in use.
func (d DirectoryPage) GlobalDepth() uint32 {
	return binary.LittleEndian.Uint32(d.data[4:8])
}

func (d DirectoryPage) setGlobalDepth(depth uint32) {
	binary.LittleEndian.PutUint32(d.data[4:8], depth)
}

// Size returns 2^GlobalDepth, the number of directory slots in use.
func (d DirectoryPage) Size() uint32 {
	return uint32(1) << d.GlobalDepth()
}

// HashToBucketIndex takes the low GlobalDepth bits of hash.
func (d DirectoryPage) HashToBucketIndex(hash uint32) uint32 {
	gd := d.GlobalDepth()
	if gd == 0 {
		return 0
	}
	return hash & ((uint32(1) << gd) - 1)
}

func (d DirectoryPage) bucketIDOffset(idx uint32) int {
	return directoryPageHeaderSize + int(idx)*8
}

func (d DirectoryPage) localDepthOffset(idx uint32) int {
	n := uint32(1) << d.MaxDepth()
	return directoryPageHeaderSize + int(n)*8 + int(idx)
}

// GetBucketPageID returns the bucket page id at idx.
func (d DirectoryPage) GetBucketPageID(idx uint32) storage.PageID {
	off := d.bucketIDOffset(idx)
	return storage.PageID(binary.LittleEndian.Uint64(d.data[off : off+8]))
}

// SetBucketPageID records the bucket page id at idx.
func (d DirectoryPage) SetBucketPageID(idx uint32, id storage.PageID) {
	off := d.bucketIDOffset(idx)
	binary.LittleEndian.PutUint64(d.data[off:off+8], uint64(id))
}

// GetLocalDepth returns the local depth recorded for idx.
func (d DirectoryPage) GetLocalDepth(idx uint32) uint32 {
	return uint32(d.data[d.localDepthOffset(idx)])
}

// SetLocalDepth records the local depth for idx.
func (d DirectoryPage) SetLocalDepth(idx uint32, depth uint32) {
	d.data[d.localDepthOffset(idx)] = byte(depth)
}

// IncrLocalDepth bumps idx's local depth by one.
func (d DirectoryPage) IncrLocalDepth(idx uint32) {
	d.SetLocalDepth(idx, d.GetLocalDepth(idx)+1)
}

// DecrLocalDepth drops idx's local depth by one.
func (d DirectoryPage) DecrLocalDepth(idx uint32) {
	d.SetLocalDepth(idx, d.GetLocalDepth(idx)-1)
}

// GetSplitImageIndex returns the bucket index that differs from idx
// only in the highest bit at idx's current local depth.
func (d DirectoryPage) GetSplitImageIndex(idx uint32) uint32 {
	ld := d.GetLocalDepth(idx)
	if ld == 0 {
		return idx
	}
	return idx ^ (uint32(1) << (ld - 1))
}

// IncrGlobalDepth doubles the directory: every entry in [0, 2^gd) is
// mirrored at [2^gd, 2^(gd+1)) before gd is incremented. A no-op at
// MaxDepth.
func (d DirectoryPage) IncrGlobalDepth() {
	gd := d.GlobalDepth()
	if gd >= d.MaxDepth() {
		return
	}
	half := uint32(1) << gd
	for i := uint32(0); i < half; i++ {
		d.SetBucketPageID(half+i, d.GetBucketPageID(i))
		d.SetLocalDepth(half+i, d.GetLocalDepth(i))
	}
	d.setGlobalDepth(gd + 1)
}

// DecrGlobalDepth halves the directory's addressable range. The upper
// half is left in place (unreachable once global depth drops) and
// overwritten the next time it's mirrored into.
func (d DirectoryPage) DecrGlobalDepth() {
	gd := d.GlobalDepth()
	if gd == 0 {
		return
	}
	d.setGlobalDepth(gd - 1)
}

// CanShrink reports whether every slot's local depth is strictly less
// than the global depth, meaning the upper half of the directory is a
// pure mirror of the lower half and global depth can be decremented.
func (d DirectoryPage) CanShrink() bool {
	gd := d.GlobalDepth()
	if gd == 0 {
		return false
	}
	for i := uint32(0); i < d.Size(); i++ {
		if d.GetLocalDepth(i) >= gd {
			return false
		}
	}
	return true
}
