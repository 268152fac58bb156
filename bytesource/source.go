// Package bytesource implements FFDB's uniform random-access byte contract over
// local files, HTTP/FTP range requests, and whole-file gzip/bgzip via a side index.
package bytesource

import (
	"context"
	"errors"
)

// ErrRangeUnsupported is returned when a remote server refuses byte-range requests
// on a resource that is not otherwise whole-downloadable.
var ErrRangeUnsupported = errors.New("ffdb: server does not support byte ranges")

// Source is the uniform contract every byte-source implementation satisfies.
// ReadAt is a pure function of its arguments: concurrent calls are independent.
type Source interface {
	ReadAt(ctx context.Context, offset, length int64) ([]byte, error)
	Size(ctx context.Context) (int64, error)
	Close() error
}
