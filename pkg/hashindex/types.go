package hashindex

import (
	"encoding/binary"
	"hash/fnv"
)

// Key and Value are the fixed-width types the index stores. The
// on-disk bucket layout needs a fixed entry width to compute slot
// offsets directly, so both are plain 8-byte words rather than an
// open-ended generic parameter.
type Key = uint64
type Value = uint64

// Comparator orders two keys: negative if a < b, zero if equal,
// positive if a > b.
type Comparator func(a, b Key) int

// HashFunction maps a key onto the 32-bit space the header and
// directory pages slice bits out of.
type HashFunction func(key Key) uint32

// DefaultComparator orders keys numerically.
func DefaultComparator(a, b Key) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// DefaultHashFunction hashes a key's little-endian bytes with FNV-1a.
// Keys are few enough bytes that a cryptographic or seeded hash buys
// nothing here; FNV-1a is the standard library's own answer to "hash
// these bytes well."
func DefaultHashFunction(key Key) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	h := fnv.New32a()
	h.Write(buf[:])
	return h.Sum32()
}
