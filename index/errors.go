package index

import "errors"

// ErrUnsorted is returned by Load when the index file is not sorted by
// identifier (ties by ascending offset).
var ErrUnsorted = errors.New("ffdb: index is not sorted")

// ErrMixedChecksums is returned when some records carry a checksum column and
// others don't: an index either checksums every record or none of them.
var ErrMixedChecksums = errors.New("ffdb: index mixes records with and without checksums")
