package storage

import "testing"

func TestLRUKReplacerScenario(t *testing.T) {
	// Mirrors the worked example from the reference design: K=2, access
	// sequence (1)(2)(3)(4)(1)(2)(3)(4)(1), all evictable; Evict must
	// return frame 2.
	r := NewLRUKReplacer(8, 2)

	for _, f := range []FrameID{1, 2, 3, 4, 1, 2, 3, 4, 1} {
		r.RecordAccess(f)
	}
	for _, f := range []FrameID{1, 2, 3, 4} {
		r.SetEvictable(f, true)
	}

	got, ok := r.Evict()
	if !ok {
		t.Fatal("Evict: expected a candidate")
	}
	if got != 2 {
		t.Fatalf("Evict: got frame %d, want frame 2", got)
	}
}

func TestLRUKReplacerPrefersFewerThanKAccesses(t *testing.T) {
	r := NewLRUKReplacer(8, 2)

	// Frame 1 has two accesses (a full K=2 history); frame 2 has only
	// one, recorded after frame 1's first access. Frame 2 must still win:
	// infinite backward k-distance always beats a finite one.
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.RecordAccess(1)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)

	got, ok := r.Evict()
	if !ok {
		t.Fatal("Evict: expected a candidate")
	}
	if got != 2 {
		t.Fatalf("Evict: got frame %d, want frame 2 (fewer than K accesses)", got)
	}
}

func TestLRUKReplacerNoEvictableFrame(t *testing.T) {
	r := NewLRUKReplacer(4, 2)
	r.RecordAccess(0)
	if _, ok := r.Evict(); ok {
		t.Fatal("Evict: expected false with no evictable frame")
	}
}

func TestLRUKReplacerSetEvictableTracksSize(t *testing.T) {
	r := NewLRUKReplacer(4, 2)
	r.RecordAccess(0)
	r.RecordAccess(1)

	if r.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 before any SetEvictable(true)", r.Size())
	}
	r.SetEvictable(0, true)
	r.SetEvictable(1, true)
	if r.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", r.Size())
	}
	r.SetEvictable(0, false)
	if r.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", r.Size())
	}
}

func TestLRUKReplacerRemove(t *testing.T) {
	r := NewLRUKReplacer(4, 2)
	r.RecordAccess(0)
	r.SetEvictable(0, true)
	if err := r.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after Remove", r.Size())
	}
	if _, ok := r.Evict(); ok {
		t.Fatal("Evict: expected false after Remove")
	}
}

func TestLRUKReplacerInvalidFrame(t *testing.T) {
	r := NewLRUKReplacer(4, 2)
	if err := r.RecordAccess(-1); err != ErrInvalidFrame {
		t.Fatalf("RecordAccess(-1) = %v, want ErrInvalidFrame", err)
	}
	if err := r.RecordAccess(4); err != ErrInvalidFrame {
		t.Fatalf("RecordAccess(4) = %v, want ErrInvalidFrame", err)
	}
}
