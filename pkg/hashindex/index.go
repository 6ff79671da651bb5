package hashindex

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/relio-db/diskcore/pkg/storage"
)

// ExtendibleHashIndex is a disk-resident extendible hash table over a
// buffer pool: a fixed header page pointing to lazily-allocated
// directory pages, each pointing to lazily-allocated bucket pages.
// Every operation descends header -> directory -> bucket using latch
// coupling, acquiring a child's latch before releasing its parent's.
type ExtendibleHashIndex struct {
	name    string
	bpm     *storage.BufferPoolManager
	cmp     Comparator
	hashFn  HashFunction
	headerK uint32
	dirK    uint32
	bucketK uint32

	headerPageID storage.PageID
}

// New constructs an index named name over bpm. An empty name gets a
// generated one, since two indexes opened against the same buffer
// pool with no name given would otherwise be indistinguishable in
// diagnostics. headerMaxDepth and directoryMaxDepth bound how many
// hash bits the header and any one directory can address; bucketMaxSize
// bounds entries per bucket. All three must fit within a single page.
func New(name string, bpm *storage.BufferPoolManager, cmp Comparator, hashFn HashFunction, headerMaxDepth, directoryMaxDepth, bucketMaxSize uint32) (*ExtendibleHashIndex, error) {
	if headerMaxDepth > MaxHeaderDepth || directoryMaxDepth > MaxDirectoryDepth {
		return nil, ErrDepthTooLarge
	}
	if bucketMaxSize > MaxBucketSize {
		return nil, ErrBucketTooLarge
	}
	if name == "" {
		name = uuid.NewString()
	}

	guard, headerPageID, err := bpm.NewPageGuarded()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate header page: %w", err)
	}
	header := NewHeaderPage(guard.Data())
	header.Init(headerMaxDepth)
	guard.SetDirty()
	guard.Drop()

	return &ExtendibleHashIndex{
		name:         name,
		bpm:          bpm,
		cmp:          cmp,
		hashFn:       hashFn,
		headerK:      headerMaxDepth,
		dirK:         directoryMaxDepth,
		bucketK:      bucketMaxSize,
		headerPageID: headerPageID,
	}, nil
}

// Name returns the index's name.
func (idx *ExtendibleHashIndex) Name() string { return idx.name }

// GetValue looks up key, returning its value and true if present.
func (idx *ExtendibleHashIndex) GetValue(key Key) (Value, bool, error) {
	hash := idx.hashFn(key)

	headerGuard, err := idx.bpm.FetchPageRead(idx.headerPageID)
	if err != nil {
		return 0, false, err
	}
	header := NewHeaderPage(headerGuard.Data())
	dirIdx := header.HashToDirectoryIndex(hash)
	dirPageID := header.GetDirectoryPageID(dirIdx)
	if dirPageID == storage.InvalidPageID {
		headerGuard.Drop()
		return 0, false, nil
	}

	dirGuard, err := idx.bpm.FetchPageRead(dirPageID)
	headerGuard.Drop()
	if err != nil {
		return 0, false, err
	}
	dir := NewDirectoryPage(dirGuard.Data())
	bucketIdx := dir.HashToBucketIndex(hash)
	bucketPageID := dir.GetBucketPageID(bucketIdx)
	if bucketPageID == storage.InvalidPageID {
		dirGuard.Drop()
		return 0, false, nil
	}

	bucketGuard, err := idx.bpm.FetchPageRead(bucketPageID)
	dirGuard.Drop()
	if err != nil {
		return 0, false, err
	}
	bucket := NewBucketPage(bucketGuard.Data())
	value, found := bucket.Lookup(key, idx.cmp)
	bucketGuard.Drop()
	return value, found, nil
}

// Insert adds (key, value), splitting buckets and growing the
// directory as needed. Returns false if key already exists, or if the
// directory is already at directory_max_depth and cannot split
// further.
func (idx *ExtendibleHashIndex) Insert(key Key, value Value) (bool, error) {
	for {
		retry, ok, err := idx.tryInsert(key, value)
		if !retry {
			return ok, err
		}
	}
}

// tryInsert attempts one pass of the insert algorithm. retry is true
// when a split occurred and the caller must re-enter from the top, per
// the latch-coupling discipline that forbids holding any latch across
// a retry.
func (idx *ExtendibleHashIndex) tryInsert(key Key, value Value) (retry bool, ok bool, err error) {
	hash := idx.hashFn(key)

	headerGuard, err := idx.bpm.FetchPageWrite(idx.headerPageID)
	if err != nil {
		return false, false, err
	}
	header := NewHeaderPage(headerGuard.Data())
	dirIdx := header.HashToDirectoryIndex(hash)
	dirPageID := header.GetDirectoryPageID(dirIdx)

	var dirGuard storage.WritePageGuard
	if dirPageID == storage.InvalidPageID {
		basic, newID, ferr := idx.bpm.NewPageGuarded()
		if ferr != nil {
			headerGuard.Drop()
			return false, false, ferr
		}
		dir := NewDirectoryPage(basic.Data())
		dir.Init(idx.dirK)
		header.SetDirectoryPageID(dirIdx, newID)
		headerGuard.SetDirty()
		dirPageID = newID
		dirGuard = basic.UpgradeWrite()
	} else {
		dirGuard, err = idx.bpm.FetchPageWrite(dirPageID)
		if err != nil {
			headerGuard.Drop()
			return false, false, err
		}
	}
	headerGuard.Drop()

	dir := NewDirectoryPage(dirGuard.Data())
	bucketIdx := dir.HashToBucketIndex(hash)
	bucketPageID := dir.GetBucketPageID(bucketIdx)

	var bucketGuard storage.WritePageGuard
	if bucketPageID == storage.InvalidPageID {
		basic, newID, ferr := idx.bpm.NewPageGuarded()
		if ferr != nil {
			dirGuard.Drop()
			return false, false, ferr
		}
		bucket := NewBucketPage(basic.Data())
		bucket.Init(idx.bucketK)
		dir.SetBucketPageID(bucketIdx, newID)
		dir.SetLocalDepth(bucketIdx, 0)
		dirGuard.SetDirty()
		bucketPageID = newID
		bucketGuard = basic.UpgradeWrite()
	} else {
		bucketGuard, err = idx.bpm.FetchPageWrite(bucketPageID)
		if err != nil {
			dirGuard.Drop()
			return false, false, err
		}
	}

	bucket := NewBucketPage(bucketGuard.Data())

	if _, found := bucket.Lookup(key, idx.cmp); found {
		bucketGuard.Drop()
		dirGuard.Drop()
		return false, false, nil
	}

	if !bucket.IsFull() {
		bucket.Insert(key, value, idx.cmp)
		bucketGuard.SetDirty()
		bucketGuard.Drop()
		dirGuard.Drop()
		return false, true, nil
	}

	// Bucket full: grow the directory if needed, then split the bucket.
	localDepth := dir.GetLocalDepth(bucketIdx)
	globalDepth := dir.GlobalDepth()
	if localDepth == globalDepth {
		if globalDepth == dir.MaxDepth() {
			bucketGuard.Drop()
			dirGuard.Drop()
			return false, false, nil
		}
		dir.IncrGlobalDepth()
	}
	dir.IncrLocalDepth(bucketIdx)
	newLocalDepth := dir.GetLocalDepth(bucketIdx)
	discriminator := uint32(1) << (newLocalDepth - 1)

	newBasic, newBucketID, ferr := idx.bpm.NewPageGuarded()
	if ferr != nil {
		bucketGuard.Drop()
		dirGuard.Drop()
		return false, false, ferr
	}
	newBucketGuard := newBasic.UpgradeWrite()
	newBucket := NewBucketPage(newBucketGuard.Data())
	newBucket.Init(idx.bucketK)

	oldBucketPageID := bucketPageID
	for j := uint32(0); j < dir.Size(); j++ {
		if dir.GetBucketPageID(j) != oldBucketPageID {
			continue
		}
		dir.SetLocalDepth(j, newLocalDepth)
		if j&discriminator != 0 {
			dir.SetBucketPageID(j, newBucketID)
		}
	}

	oldEntries := bucket.AllEntries()
	bucket.Clear()
	for _, e := range oldEntries {
		if idx.hashFn(e.Key)&discriminator != 0 {
			newBucket.Insert(e.Key, e.Value, idx.cmp)
		} else {
			bucket.Insert(e.Key, e.Value, idx.cmp)
		}
	}

	bucketGuard.SetDirty()
	newBucketGuard.SetDirty()
	dirGuard.SetDirty()
	newBucketGuard.Drop()
	bucketGuard.Drop()
	dirGuard.Drop()
	return true, false, nil
}

// Remove deletes key, merging an emptied bucket with its split image
// and shrinking the directory while possible. Returns false if key was
// not present.
func (idx *ExtendibleHashIndex) Remove(key Key) (bool, error) {
	hash := idx.hashFn(key)

	headerGuard, err := idx.bpm.FetchPageWrite(idx.headerPageID)
	if err != nil {
		return false, err
	}
	header := NewHeaderPage(headerGuard.Data())
	dirIdx := header.HashToDirectoryIndex(hash)
	dirPageID := header.GetDirectoryPageID(dirIdx)
	if dirPageID == storage.InvalidPageID {
		headerGuard.Drop()
		return false, nil
	}

	dirGuard, err := idx.bpm.FetchPageWrite(dirPageID)
	headerGuard.Drop()
	if err != nil {
		return false, err
	}
	dir := NewDirectoryPage(dirGuard.Data())
	bucketIdx := dir.HashToBucketIndex(hash)
	bucketPageID := dir.GetBucketPageID(bucketIdx)
	if bucketPageID == storage.InvalidPageID {
		dirGuard.Drop()
		return false, nil
	}

	bucketGuard, err := idx.bpm.FetchPageWrite(bucketPageID)
	if err != nil {
		dirGuard.Drop()
		return false, err
	}
	bucket := NewBucketPage(bucketGuard.Data())
	if !bucket.Remove(key, idx.cmp) {
		bucketGuard.Drop()
		dirGuard.Drop()
		return false, nil
	}
	bucketGuard.SetDirty()

	curIdx := bucketIdx
	curPageID := bucketPageID
	curGuard := bucketGuard
	for dir.GetLocalDepth(curIdx) > 0 {
		curBucket := NewBucketPage(curGuard.Data())
		if !curBucket.IsEmpty() {
			break
		}
		splitIdx := dir.GetSplitImageIndex(curIdx)
		splitPageID := dir.GetBucketPageID(splitIdx)
		if splitPageID == storage.InvalidPageID || splitPageID == curPageID || dir.GetLocalDepth(splitIdx) != dir.GetLocalDepth(curIdx) {
			break
		}

		newLocalDepth := dir.GetLocalDepth(curIdx) - 1
		for j := uint32(0); j < dir.Size(); j++ {
			pid := dir.GetBucketPageID(j)
			if pid == curPageID || pid == splitPageID {
				dir.SetBucketPageID(j, splitPageID)
				dir.SetLocalDepth(j, newLocalDepth)
			}
		}

		curGuard.Drop()
		idx.bpm.DeletePage(curPageID)

		nextGuard, ferr := idx.bpm.FetchPageWrite(splitPageID)
		if ferr != nil {
			dirGuard.Drop()
			return true, ferr
		}
		curGuard = nextGuard
		curPageID = splitPageID
		curIdx = curIdx & ((uint32(1) << newLocalDepth) - 1)
	}
	curGuard.Drop()

	for dir.CanShrink() {
		dir.DecrGlobalDepth()
	}
	dirGuard.SetDirty()
	dirGuard.Drop()
	return true, nil
}
