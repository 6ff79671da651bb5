package storage

import "sync"

// FrameID indexes a frame in the buffer pool's frame array.
type FrameID int

// lruKNode is the per-frame access history the replacer tracks: up to K
// most recent access timestamps, oldest first, and whether the frame is
// currently a candidate for eviction.
type lruKNode struct {
	frameID     FrameID
	history     []uint64 // oldest-first, length <= k
	isEvictable bool
}

// LRUKReplacer selects an eviction victim among a bounded set of
// evictable frames using the LRU-K rule: a frame with fewer than K
// recorded accesses has infinite backward k-distance and is always
// preferred over one with K or more, ties broken by earliest first
// access; among frames with K+ accesses, the one with the largest
// backward k-distance (current timestamp minus its oldest tracked
// access) wins.
type LRUKReplacer struct {
	mu               sync.Mutex
	replacerSize     int
	k                int
	currentTimestamp uint64
	currSize         int
	nodes            map[FrameID]*lruKNode
}

// NewLRUKReplacer creates a replacer tracking at most numFrames frame
// ids, each with up to k historical accesses.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	return &LRUKReplacer{
		replacerSize: numFrames,
		k:            k,
		nodes:        make(map[FrameID]*lruKNode),
	}
}

func (r *LRUKReplacer) checkFrame(frameID FrameID) bool {
	return frameID >= 0 && int(frameID) < r.replacerSize
}

// RecordAccess bumps the monotonic timestamp and appends it to frameID's
// history, creating the node if this is its first access. If the
// history already holds k entries, the oldest is dropped.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checkFrame(frameID) {
		return ErrInvalidFrame
	}

	r.currentTimestamp++
	node, ok := r.nodes[frameID]
	if !ok {
		node = &lruKNode{frameID: frameID}
		r.nodes[frameID] = node
	}
	node.history = append(node.history, r.currentTimestamp)
	if len(node.history) > r.k {
		node.history = node.history[1:]
	}
	return nil
}

// SetEvictable toggles whether frameID is a candidate for eviction,
// adjusting Size() accordingly. A no-op if the frame is already in the
// requested state, and silent if the frame is unknown.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checkFrame(frameID) {
		return ErrInvalidFrame
	}
	node, ok := r.nodes[frameID]
	if !ok {
		return nil
	}
	if node.isEvictable == evictable {
		return nil
	}
	node.isEvictable = evictable
	if evictable {
		r.currSize++
	} else {
		r.currSize--
	}
	return nil
}

// Remove drops frameID's node outright, regardless of its backward
// k-distance. Silent if the frame is unknown.
func (r *LRUKReplacer) Remove(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checkFrame(frameID) {
		return ErrInvalidFrame
	}
	node, ok := r.nodes[frameID]
	if !ok {
		return nil
	}
	if node.isEvictable {
		r.currSize--
	}
	delete(r.nodes, frameID)
	return nil
}

// Evict selects and removes the evictable frame with the largest
// backward k-distance (infinite for frames with fewer than k accesses,
// ties broken by earliest first access). Returns false if no evictable
// frame exists.
func (r *LRUKReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currSize == 0 {
		return 0, false
	}

	var (
		candidate    *lruKNode
		candidateInf bool
		maxDist      uint64
	)

	for _, node := range r.nodes {
		if !node.isEvictable {
			continue
		}
		if len(node.history) < r.k {
			// Infinite backward k-distance: always preferred, tie-broken
			// by earliest first access.
			if !candidateInf || node.history[0] < candidate.history[0] {
				candidate = node
				candidateInf = true
			}
			continue
		}
		if candidateInf {
			continue
		}
		dist := r.currentTimestamp - node.history[0]
		if candidate == nil || dist > maxDist {
			candidate = node
			maxDist = dist
		}
	}

	if candidate == nil {
		return 0, false
	}
	delete(r.nodes, candidate.frameID)
	r.currSize--
	return candidate.frameID, true
}

// Size returns the number of currently evictable frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currSize
}
