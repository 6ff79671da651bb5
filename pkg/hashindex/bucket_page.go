package hashindex

import (
	"encoding/binary"

	"github.com/relio-db/diskcore/pkg/storage"
)

// bucketPageHeaderSize is the width of BucketPage's fixed prefix:
// size (uint32), capacity (uint32).
const bucketPageHeaderSize = 8

// bucketEntrySize is the width of one (key, value) slot.
const bucketEntrySize = 16

// MaxBucketSize bounds bucket_max_size so that its slots plus the
// header prefix fit in one page.
const MaxBucketSize = (storage.PageSize - bucketPageHeaderSize) / bucketEntrySize

// Entry is one (key, value) pair as stored in a bucket.
type Entry struct {
	Key   Key
	Value Value
}

// BucketPage is a typed view over a page's raw bytes: an unsorted,
// fixed-capacity array of (key, value) slots.
type BucketPage struct {
	data *[storage.PageSize]byte
}

// NewBucketPage views a guarded page's bytes as a bucket page.
func NewBucketPage(data *[storage.PageSize]byte) BucketPage {
	return BucketPage{data: data}
}

// Init sets occupancy to zero and records capacity.
func (b BucketPage) Init(capacity uint32) {
	binary.LittleEndian.PutUint32(b.data[0:4], 0)
	binary.LittleEndian.PutUint32(b.data[4:8], capacity)
}

// Size returns the bucket's current occupancy.
func (b BucketPage) Size() uint32 {
	return binary.LittleEndian.Uint32(b.data[0:4])
}

func (b BucketPage) setSize(n uint32) {
	binary.LittleEndian.PutUint32(b.data[0:4], n)
}

// Capacity returns the bucket's configured slot count.
func (b BucketPage) Capacity() uint32 {
	return binary.LittleEndian.Uint32(b.data[4:8])
}

// IsFull reports whether the bucket has no free slots.
func (b BucketPage) IsFull() bool {
	return b.Size() >= b.Capacity()
}

// IsEmpty reports whether the bucket holds no entries.
func (b BucketPage) IsEmpty() bool {
	return b.Size() == 0
}

func (b BucketPage) entryOffset(i uint32) int {
	return bucketPageHeaderSize + int(i)*bucketEntrySize
}

// KeyAt returns the key in slot i.
func (b BucketPage) KeyAt(i uint32) Key {
	off := b.entryOffset(i)
	return binary.LittleEndian.Uint64(b.data[off : off+8])
}

// ValueAt returns the value in slot i.
func (b BucketPage) ValueAt(i uint32) Value {
	off := b.entryOffset(i)
	return binary.LittleEndian.Uint64(b.data[off+8 : off+16])
}

func (b BucketPage) setEntryAt(i uint32, key Key, value Value) {
	off := b.entryOffset(i)
	binary.LittleEndian.PutUint64(b.data[off:off+8], key)
	binary.LittleEndian.PutUint64(b.data[off+8:off+16], value)
}

// Lookup scans the bucket for a key equal to key under cmp.
func (b BucketPage) Lookup(key Key, cmp Comparator) (Value, bool) {
	n := b.Size()
	for i := uint32(0); i < n; i++ {
		if cmp(b.KeyAt(i), key) == 0 {
			return b.ValueAt(i), true
		}
	}
	return 0, false
}

// Insert appends (key, value) if the bucket has room and key isn't
// already present. Returns false on either a full bucket or a
// duplicate key; the caller distinguishes the two by checking
// IsFull/Lookup itself, since the two failures are handled differently
// (split vs. reject).
func (b BucketPage) Insert(key Key, value Value, cmp Comparator) bool {
	if b.IsFull() {
		return false
	}
	if _, found := b.Lookup(key, cmp); found {
		return false
	}
	n := b.Size()
	b.setEntryAt(n, key, value)
	b.setSize(n + 1)
	return true
}

// Remove deletes the entry for key, if present, by swapping the last
// slot into its place. Returns false if key was not found.
func (b BucketPage) Remove(key Key, cmp Comparator) bool {
	n := b.Size()
	for i := uint32(0); i < n; i++ {
		if cmp(b.KeyAt(i), key) == 0 {
			last := n - 1
			if i != last {
				b.setEntryAt(i, b.KeyAt(last), b.ValueAt(last))
			}
			b.setSize(last)
			return true
		}
	}
	return false
}

// AllEntries copies out every (key, value) pair currently stored.
func (b BucketPage) AllEntries() []Entry {
	n := b.Size()
	entries := make([]Entry, n)
	for i := uint32(0); i < n; i++ {
		entries[i] = Entry{Key: b.KeyAt(i), Value: b.ValueAt(i)}
	}
	return entries
}

// Clear empties the bucket without touching its slot bytes; they're
// overwritten as new entries are appended.
func (b BucketPage) Clear() {
	b.setSize(0)
}
