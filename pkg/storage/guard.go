package storage

// BasicPageGuard is a scoped handle over a pinned page: it owns exactly
// one pin and releases it on Drop, which is always safe to call more
// than once. It never takes a latch, callers that need one should
// upgrade to a ReadPageGuard or WritePageGuard instead.
//
// Guards are move-only by convention: once ownership transfers (via
// UpgradeRead/UpgradeWrite, or simply reassigning the variable holding
// one), the original must not be used again. Go has no copy-suppression,
// so this is enforced by discipline and documented here rather than by
// the type system.
type BasicPageGuard struct {
	bpm     *BufferPoolManager
	page    *Page
	isDirty bool
}

// PageID returns the id of the guarded page, or InvalidPageID if the
// guard is empty (already dropped or moved from).
func (g *BasicPageGuard) PageID() PageID {
	if g.page == nil {
		return InvalidPageID
	}
	return g.page.ID
}

// Data returns the guarded page's raw bytes. Safe only while the guard
// is held; callers that need concurrency safety should go through
// ReadPageGuard/WritePageGuard instead, which also hold the page latch.
func (g *BasicPageGuard) Data() *[PageSize]byte {
	if g.page == nil {
		return nil
	}
	return &g.page.Data
}

// SetDirty marks the guarded page dirty; the flag is applied when the
// guard's pin is released.
func (g *BasicPageGuard) SetDirty() {
	g.isDirty = true
}

// Drop releases the guard's pin exactly once. Calling Drop on an empty
// or already-dropped guard is a silent no-op.
func (g *BasicPageGuard) Drop() {
	if g.page == nil || g.bpm == nil {
		g.page = nil
		g.bpm = nil
		g.isDirty = false
		return
	}
	g.bpm.UnpinPage(g.page.ID, g.isDirty)
	g.page = nil
	g.bpm = nil
	g.isDirty = false
}

// UpgradeRead converts this guard into a ReadPageGuard, transferring
// ownership of the pin and acquiring the page's shared latch. The
// source guard is left empty.
func (g *BasicPageGuard) UpgradeRead() ReadPageGuard {
	rg := ReadPageGuard{BasicPageGuard{bpm: g.bpm, page: g.page, isDirty: g.isDirty}}
	if rg.page != nil {
		rg.page.RLatch()
	}
	g.page = nil
	g.bpm = nil
	g.isDirty = false
	return rg
}

// UpgradeWrite converts this guard into a WritePageGuard, transferring
// ownership of the pin and acquiring the page's exclusive latch. The
// source guard is left empty.
func (g *BasicPageGuard) UpgradeWrite() WritePageGuard {
	wg := WritePageGuard{BasicPageGuard{bpm: g.bpm, page: g.page, isDirty: g.isDirty}}
	if wg.page != nil {
		wg.page.WLatch()
	}
	g.page = nil
	g.bpm = nil
	g.isDirty = false
	return wg
}

// ReadPageGuard wraps a BasicPageGuard with a held shared latch,
// released before the pin on Drop.
type ReadPageGuard struct {
	BasicPageGuard
}

// Drop releases the shared latch, then the pin. Idempotent.
func (g *ReadPageGuard) Drop() {
	if g.page != nil {
		g.page.RUnlatch()
	}
	g.BasicPageGuard.Drop()
}

// WritePageGuard wraps a BasicPageGuard with a held exclusive latch,
// released before the pin on Drop. Any access to Data through a
// WritePageGuard is assumed to mutate the page and marks it dirty; a
// guard dropped without touching Data leaves the dirty bit as it was.
type WritePageGuard struct {
	BasicPageGuard
}

// Data returns the guarded page's raw bytes for mutation, marking the
// page dirty since a write guard's whole purpose is to write.
func (g *WritePageGuard) Data() *[PageSize]byte {
	g.isDirty = true
	return g.BasicPageGuard.Data()
}

// Drop releases the exclusive latch, then the pin. Idempotent.
func (g *WritePageGuard) Drop() {
	if g.page != nil {
		g.page.WUnlatch()
	}
	g.BasicPageGuard.Drop()
}
