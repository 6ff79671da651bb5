package hashindex

import "testing"

// scenarioHash pins specific hashes onto a handful of keys so the
// split/merge paths can be driven deterministically instead of relying
// on FNV to happen to collide the way a scenario needs.
func scenarioHash(k Key) uint32 {
	switch k {
	case 1:
		return 0 // bit0 = 0
	case 2:
		return 2 // bit0 = 0, same split-pair member as key 1
	case 3:
		return 1 // bit0 = 1, the other half of the split pair
	default:
		return uint32(k)
	}
}

// TestHashSplitOnBucketFull is end-to-end scenario 3: bucket_max_size=2,
// directory_max_depth=2. Two keys fill bucket 0; a third, whose hash
// has the differing bit set, forces the directory to grow and the
// bucket to split. All three keys remain retrievable afterward.
func TestHashSplitOnBucketFull(t *testing.T) {
	bpm := newTestBufferPool(t, 32)
	idx, err := New("split", bpm, DefaultComparator, scenarioHash, 1, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, kv := range []struct {
		k Key
		v Value
	}{{1, 10}, {2, 20}, {3, 30}} {
		ok, err := idx.Insert(kv.k, kv.v)
		if err != nil {
			t.Fatalf("Insert(%d,%d): %v", kv.k, kv.v, err)
		}
		if !ok {
			t.Fatalf("Insert(%d,%d) rejected", kv.k, kv.v)
		}
	}

	for _, kv := range []struct {
		k Key
		v Value
	}{{1, 10}, {2, 20}, {3, 30}} {
		v, found, err := idx.GetValue(kv.k)
		if err != nil {
			t.Fatalf("GetValue(%d): %v", kv.k, err)
		}
		if !found || v != kv.v {
			t.Fatalf("GetValue(%d) = %v, %v, want %d, true", kv.k, v, found, kv.v)
		}
	}
}

// TestHashMergeAndShrink is end-to-end scenario 4: continuing from the
// split above, removing the key that forced the split merges the
// bucket pair back together and shrinks global depth back to 0.
func TestHashMergeAndShrink(t *testing.T) {
	bpm := newTestBufferPool(t, 32)
	idx, err := New("merge", bpm, DefaultComparator, scenarioHash, 1, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	idx.Insert(1, 10)
	idx.Insert(2, 20)
	idx.Insert(3, 30)

	ok, err := idx.Remove(3)
	if err != nil {
		t.Fatalf("Remove(3): %v", err)
	}
	if !ok {
		t.Fatal("Remove(3) returned false")
	}

	if v, found, err := idx.GetValue(1); err != nil || !found || v != 10 {
		t.Fatalf("GetValue(1) = %v, %v, %v, want 10, true, nil", v, found, err)
	}
	if v, found, err := idx.GetValue(2); err != nil || !found || v != 20 {
		t.Fatalf("GetValue(2) = %v, %v, %v, want 20, true, nil", v, found, err)
	}
	if _, found, err := idx.GetValue(3); err != nil || found {
		t.Fatalf("GetValue(3) after removal = %v, %v, want false, nil", found, err)
	}
}
