package storage

import "sync"

// BufferPoolManager owns a fixed array of frames and the page-table
// mapping pages onto them. It coordinates the LRU-K replacer and the
// disk scheduler so that a pinned page is always resident and never
// evicted out from under its caller. One mutex protects the page table,
// free list, replacer calls, and per-frame metadata.
type BufferPoolManager struct {
	mu sync.Mutex

	pages     []Page
	pageTable map[PageID]FrameID
	freeList  []FrameID
	replacer  *LRUKReplacer
	scheduler *DiskScheduler

	nextPageID PageID
}

// NewBufferPoolManager creates a pool of poolSize frames backed by
// diskMgr, with a replacer tracking the last replacerK accesses per
// frame.
func NewBufferPoolManager(poolSize int, diskMgr *DiskManager, replacerK int) *BufferPoolManager {
	bpm := &BufferPoolManager{
		pages:     make([]Page, poolSize),
		pageTable: make(map[PageID]FrameID, poolSize),
		freeList:  make([]FrameID, poolSize),
		replacer:  NewLRUKReplacer(poolSize, replacerK),
		scheduler: NewDiskScheduler(diskMgr),
	}
	for i := 0; i < poolSize; i++ {
		bpm.freeList[i] = FrameID(i)
		bpm.pages[i].ID = InvalidPageID
	}
	return bpm
}

// allocatePageID hands out the next monotonic page id. Ids are never
// reused, even across DeletePage.
func (bpm *BufferPoolManager) allocatePageID() PageID {
	id := bpm.nextPageID
	bpm.nextPageID++
	return id
}

// victimFrame obtains a frame to hold a page: from the free list if one
// is available, otherwise by evicting via the replacer. If the evicted
// frame held a dirty page, it is flushed synchronously first. Returns
// (frame, false) if no free frame and no evictable frame exist.
//
// Must be called with bpm.mu held.
func (bpm *BufferPoolManager) victimFrame() (FrameID, bool) {
	if n := len(bpm.freeList); n > 0 {
		fid := bpm.freeList[n-1]
		bpm.freeList = bpm.freeList[:n-1]
		return fid, true
	}

	fid, ok := bpm.replacer.Evict()
	if !ok {
		return 0, false
	}

	victim := &bpm.pages[fid]
	if victim.IsDirty && victim.ID != InvalidPageID {
		bpm.flushFrameLocked(fid)
	}
	delete(bpm.pageTable, victim.ID)
	return fid, true
}

// flushFrameLocked writes the frame's page to disk and clears its dirty
// bit. Must be called with bpm.mu held; concurrent flush and eviction of
// the same page cannot interleave writes because both paths run under
// this same mutex.
func (bpm *BufferPoolManager) flushFrameLocked(fid FrameID) error {
	page := &bpm.pages[fid]
	if err := bpm.scheduler.ScheduleWrite(page.ID, &page.Data); err != nil {
		return err
	}
	page.IsDirty = false
	return nil
}

// NewPage allocates a fresh page id and pins it in a frame, taken from
// the free list or evicted from the replacer. Returns ErrNoEvictableFrame
// if no frame could be obtained.
func (bpm *BufferPoolManager) NewPage() (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	fid, ok := bpm.victimFrame()
	if !ok {
		return nil, ErrNoEvictableFrame
	}

	pageID := bpm.allocatePageID()
	page := &bpm.pages[fid]
	page.reset(pageID)
	page.PinCount = 1

	bpm.pageTable[pageID] = fid
	bpm.replacer.Remove(fid)
	bpm.replacer.RecordAccess(fid)
	bpm.replacer.SetEvictable(fid, false)

	return page, nil
}

// FetchPage returns the page for pageID, resident already or read in
// from disk. Returns ErrNoEvictableFrame if the page table misses and no
// frame could be obtained for the read.
func (bpm *BufferPoolManager) FetchPage(pageID PageID) (*Page, error) {
	bpm.mu.Lock()

	if fid, ok := bpm.pageTable[pageID]; ok {
		page := &bpm.pages[fid]
		page.PinCount++
		bpm.replacer.RecordAccess(fid)
		bpm.replacer.SetEvictable(fid, false)
		bpm.mu.Unlock()
		return page, nil
	}

	fid, ok := bpm.victimFrame()
	if !ok {
		bpm.mu.Unlock()
		return nil, ErrNoEvictableFrame
	}

	page := &bpm.pages[fid]
	page.reset(pageID)
	bpm.pageTable[pageID] = fid

	// The synchronous read happens with bpm.mu held, a known
	// coarse-grained simplification: it keeps eviction and the read
	// atomic with respect to other buffer pool callers at the cost of
	// serializing all I/O.
	err := bpm.scheduler.ScheduleRead(pageID, &page.Data)
	if err != nil {
		delete(bpm.pageTable, pageID)
		bpm.freeList = append(bpm.freeList, fid)
		bpm.mu.Unlock()
		return nil, err
	}

	page.PinCount = 1
	bpm.replacer.Remove(fid)
	bpm.replacer.RecordAccess(fid)
	bpm.replacer.SetEvictable(fid, false)

	bpm.mu.Unlock()
	return page, nil
}

// UnpinPage decrements pageID's pin count, marking the frame evictable
// once it reaches zero. isDirty ORs into the page's dirty bit; once
// dirty, a page stays dirty until flushed. Returns false if the page is
// unknown or already unpinned.
func (bpm *BufferPoolManager) UnpinPage(pageID PageID, isDirty bool) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	fid, ok := bpm.pageTable[pageID]
	if !ok {
		return false
	}
	page := &bpm.pages[fid]
	if page.PinCount <= 0 {
		return false
	}
	page.PinCount--
	if isDirty {
		page.IsDirty = true
	}
	if page.PinCount == 0 {
		bpm.replacer.SetEvictable(fid, true)
	}
	return true
}

// FlushPage writes pageID's current contents to disk unconditionally and
// clears its dirty bit, regardless of whether it was actually dirty.
// Returns false if the page is not resident.
func (bpm *BufferPoolManager) FlushPage(pageID PageID) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	fid, ok := bpm.pageTable[pageID]
	if !ok {
		return false
	}
	bpm.flushFrameLocked(fid)
	return true
}

// FlushAllPages flushes every resident frame.
func (bpm *BufferPoolManager) FlushAllPages() {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	for _, fid := range bpm.pageTable {
		bpm.flushFrameLocked(fid)
	}
}

// DeletePage removes pageID from the buffer pool and deallocates its id.
// Returns true if the page was unknown (nothing to do), false if it is
// still pinned. A dirty resident page is flushed before its frame is
// reclaimed.
func (bpm *BufferPoolManager) DeletePage(pageID PageID) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	fid, ok := bpm.pageTable[pageID]
	if !ok {
		return true
	}
	page := &bpm.pages[fid]
	if page.PinCount > 0 {
		return false
	}
	if page.IsDirty {
		bpm.flushFrameLocked(fid)
	}
	page.reset(InvalidPageID)

	delete(bpm.pageTable, pageID)
	bpm.replacer.Remove(fid)
	bpm.freeList = append(bpm.freeList, fid)
	return true
}

// Shutdown stops the underlying disk scheduler's worker, draining any
// requests already submitted.
func (bpm *BufferPoolManager) Shutdown() {
	bpm.scheduler.Shutdown()
}

// FetchPageBasic fetches a page wrapped in a BasicPageGuard (pin only).
func (bpm *BufferPoolManager) FetchPageBasic(pageID PageID) (BasicPageGuard, error) {
	page, err := bpm.FetchPage(pageID)
	if err != nil {
		return BasicPageGuard{}, err
	}
	return BasicPageGuard{bpm: bpm, page: page}, nil
}

// FetchPageRead fetches a page wrapped in a ReadPageGuard (pin + shared
// latch).
func (bpm *BufferPoolManager) FetchPageRead(pageID PageID) (ReadPageGuard, error) {
	page, err := bpm.FetchPage(pageID)
	if err != nil {
		return ReadPageGuard{}, err
	}
	page.RLatch()
	return ReadPageGuard{BasicPageGuard{bpm: bpm, page: page}}, nil
}

// FetchPageWrite fetches a page wrapped in a WritePageGuard (pin +
// exclusive latch).
func (bpm *BufferPoolManager) FetchPageWrite(pageID PageID) (WritePageGuard, error) {
	page, err := bpm.FetchPage(pageID)
	if err != nil {
		return WritePageGuard{}, err
	}
	page.WLatch()
	return WritePageGuard{BasicPageGuard{bpm: bpm, page: page}}, nil
}

// NewPageGuarded allocates a new page wrapped in a BasicPageGuard,
// returning its freshly allocated id alongside the guard.
func (bpm *BufferPoolManager) NewPageGuarded() (BasicPageGuard, PageID, error) {
	page, err := bpm.NewPage()
	if err != nil {
		return BasicPageGuard{}, InvalidPageID, err
	}
	return BasicPageGuard{bpm: bpm, page: page}, page.ID, nil
}
