package bytesource

import (
	"fmt"
	"strings"

	"github.com/pschou/go-ffdb/internal/gzi"
)

// Open dispatches on rawURL's scheme to build the right Source, wrapping it in
// the gzip/bgzip side-index adapter when opts requests it. sideIndex may be nil
// unless opts.Gzip or opts.Bgzip is set.
func Open(rawURL string, opts Options, sideIndex *gzi.Index) (Source, error) {
	opts = opts.withDefaults()

	var inner Source
	var err error
	switch {
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		inner, err = OpenHTTP(rawURL, opts)
	case strings.HasPrefix(rawURL, "ftp://"):
		inner, err = OpenFTP(rawURL, opts)
	case strings.HasPrefix(rawURL, "file://"):
		inner, err = OpenLocal(strings.TrimPrefix(rawURL, "file://"))
	default:
		inner, err = OpenLocal(rawURL)
	}
	if err != nil {
		return nil, err
	}

	if !opts.Gzip && !opts.Bgzip {
		return inner, nil
	}
	if sideIndex == nil {
		return nil, fmt.Errorf("ffdb: %s requires a .gzi side index", rawURL)
	}
	var cache *SegmentCache
	if opts.KeepCache {
		cache = NewSegmentCache(opts.CacheSize)
	}
	return WrapGzip(inner, sideIndex, rawURL, cache), nil
}
