package storage

import (
	"path/filepath"
	"testing"
)

func TestBasicPageGuardDropIsIdempotent(t *testing.T) {
	bpm := newTestBufferPool(t, 2)

	guard, pageID, err := bpm.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded: %v", err)
	}

	guard.Drop()
	guard.Drop() // must not double-unpin or panic

	// The single real Drop above already brought the pin count to zero;
	// a further unpin must report failure, proving the second Drop did
	// not decrement it again.
	if bpm.UnpinPage(pageID, false) {
		t.Fatal("pin count should already be 0: double Drop must not double-unpin")
	}
}

func TestWritePageGuardMarksDirtyOnDataAccess(t *testing.T) {
	bpm := newTestBufferPool(t, 2)

	guard, pageID, err := bpm.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded: %v", err)
	}
	guard.Drop()

	wg, err := bpm.FetchPageWrite(pageID)
	if err != nil {
		t.Fatalf("FetchPageWrite: %v", err)
	}
	copy(wg.Data()[:], "written through guard")
	wg.Drop()

	page, err := bpm.FetchPage(pageID)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if !page.IsDirty {
		t.Error("page should be dirty after WritePageGuard.Data() was used")
	}
	bpm.UnpinPage(pageID, false)
}

func TestUpgradeReadAndWrite(t *testing.T) {
	bpm := newTestBufferPool(t, 2)

	basic, pageID, err := bpm.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded: %v", err)
	}

	rg := basic.UpgradeRead()
	if rg.PageID() != pageID {
		t.Fatalf("UpgradeRead: PageID() = %d, want %d", rg.PageID(), pageID)
	}
	if basic.PageID() != InvalidPageID {
		t.Fatal("source guard should be empty after UpgradeRead")
	}
	rg.Drop()

	wg, err := bpm.FetchPageBasic(pageID)
	if err != nil {
		t.Fatalf("FetchPageBasic: %v", err)
	}
	writeGuard := wg.UpgradeWrite()
	if writeGuard.PageID() != pageID {
		t.Fatalf("UpgradeWrite: PageID() = %d, want %d", writeGuard.PageID(), pageID)
	}
	writeGuard.Drop()
}

func TestGuardedFetchHelpersTakeLatches(t *testing.T) {
	dm, err := NewDiskManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDiskManager: %v", err)
	}
	defer dm.Close()
	bpm := NewBufferPoolManager(2, dm, 2)
	defer bpm.Shutdown()

	basic, pageID, err := bpm.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded: %v", err)
	}
	basic.Drop()

	rg, err := bpm.FetchPageRead(pageID)
	if err != nil {
		t.Fatalf("FetchPageRead: %v", err)
	}
	if rg.page.latch.TryLock() {
		t.Fatal("exclusive latch acquired while a ReadPageGuard holds the shared latch")
	}
	_ = rg.Data()
	rg.Drop()

	wg, err := bpm.FetchPageWrite(pageID)
	if err != nil {
		t.Fatalf("FetchPageWrite: %v", err)
	}
	if wg.page.latch.TryRLock() {
		t.Fatal("shared latch acquired while a WritePageGuard holds the exclusive latch")
	}
	_ = wg.Data()
	wg.Drop()
}
