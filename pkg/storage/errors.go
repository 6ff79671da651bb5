package storage

import "errors"

var (
	// ErrNoEvictableFrame is returned when NewPage/FetchPage need a frame
	// and every frame is pinned, the exhaustion case in the error taxonomy.
	ErrNoEvictableFrame = errors.New("buffer pool exhausted: no evictable frame")

	// ErrInvalidFrame is returned by the replacer for a frame id outside
	// [0, replacer_size).
	ErrInvalidFrame = errors.New("invalid frame id")

	// ErrSchedulerClosed is returned when a request is submitted after
	// the disk scheduler has been shut down.
	ErrSchedulerClosed = errors.New("disk scheduler is shut down")
)
