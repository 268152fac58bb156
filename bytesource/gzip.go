package bytesource

import (
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pschou/go-ffdb/internal/gzi"
)

// ErrUnalignedAccessPoint is returned when a .gzi access point needs bit-level
// resume state (WindowBits != 0) that this implementation does not carry through
// compress/flate. Only byte-aligned access points (WindowBits == 0) can be
// read from; side indexes with sub-byte resume state are not supported.
var ErrUnalignedAccessPoint = errors.New("ffdb: side index access point is not byte-aligned")

// gzipSource wraps an inner Source holding a whole-file gzip/bgzip stream and
// provides random access to the decompressed bytes via a side index.
type gzipSource struct {
	inner      Source
	index      *gzi.Index
	url        string // used as the cache key prefix when cache is enabled
	cache      *SegmentCache
	decompSize int64
}

// WrapGzip adapts inner (a whole-file gzip/bgzip stream) plus its parsed side
// index into a random-access Source. cache may be nil to disable segment caching.
func WrapGzip(inner Source, idx *gzi.Index, url string, cache *SegmentCache) Source {
	decompSize := int64(0)
	if len(idx.Points) > 0 {
		decompSize = idx.Points[len(idx.Points)-1].DecompressedOffset
	}
	return &gzipSource{inner: inner, index: idx, url: url, cache: cache, decompSize: decompSize}
}

func (s *gzipSource) accessPointIndex(p gzi.AccessPoint) int {
	for i, pt := range s.index.Points {
		if pt.CompressedOffset == p.CompressedOffset {
			return i
		}
	}
	return -1
}

// readCompressedSpan reads the compressed bytes for the span starting at access
// point floor, caching by (url, access-point index, size).
func (s *gzipSource) readCompressedSpan(ctx context.Context, floor gzi.AccessPoint, to int64) ([]byte, error) {
	from, length := floor.CompressedOffset, to-floor.CompressedOffset
	if s.cache == nil {
		return s.inner.ReadAt(ctx, from, length)
	}
	key := Key(s.url, s.accessPointIndex(floor), length)
	return s.cache.Fetch(key, func() ([]byte, error) {
		return s.inner.ReadAt(ctx, from, length)
	})
}

func (s *gzipSource) ReadAt(ctx context.Context, offset, length int64) ([]byte, error) {
	floor, ok := s.index.Floor(offset)
	if !ok {
		return nil, fmt.Errorf("ffdb: offset %d before first access point", offset)
	}
	if floor.WindowBits != 0 {
		return nil, ErrUnalignedAccessPoint
	}
	ceil, _ := s.index.Ceil(offset + length)

	end := ceil.CompressedOffset
	if end <= floor.CompressedOffset {
		sz, err := s.inner.Size(ctx)
		if err != nil {
			return nil, err
		}
		end = sz
	}

	compressed, err := s.readCompressedSpan(ctx, floor, end)
	if err != nil {
		return nil, err
	}

	fr := flate.NewReaderDict(bytes.NewReader(compressed), floor.Window)
	defer fr.Close()

	skip := offset - floor.DecompressedOffset
	if skip > 0 {
		if _, err := io.CopyN(io.Discard, fr, skip); err != nil {
			return nil, fmt.Errorf("ffdb: skipping to offset %d: %w", offset, err)
		}
	}
	out := make([]byte, length)
	n, err := io.ReadFull(fr, out)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ffdb: inflating at %d: %w", offset, err)
	}
	return out[:n], nil
}

func (s *gzipSource) Size(context.Context) (int64, error) { return s.decompSize, nil }

func (s *gzipSource) Close() error { return s.inner.Close() }
