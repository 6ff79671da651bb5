package hashindex

import "errors"

var (
	// ErrDepthTooLarge is returned at construction when header_max_depth
	// or directory_max_depth would need more directory/bucket slots than
	// fit in a single page.
	ErrDepthTooLarge = errors.New("requested depth exceeds page capacity")

	// ErrBucketTooLarge is returned at construction when bucket_max_size
	// would need more slots than fit in a single bucket page.
	ErrBucketTooLarge = errors.New("bucket max size exceeds page capacity")
)
