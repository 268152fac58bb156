package indexer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pschou/go-ffdb/index"
)

// splitPoints chooses blocks-1 interior byte offsets, each the end of the
// nearest terminator line at or after size*i/blocks, so that no entry's lines
// straddle a block boundary. A plain line boundary is not enough: a
// multi-line entry's id line and terminator line can fall on either side of
// one, truncating the entry in the earlier block and orphaning its tail in
// the later block. Cutting only after a terminator match guarantees every
// block starts in stateBetween.
func splitPoints(f *os.File, size int64, blocks int, terminator *regexp.Regexp) ([]int64, error) {
	if blocks <= 1 {
		return nil, nil
	}
	points := make([]int64, 0, blocks-1)
	for i := 1; i < blocks; i++ {
		naive := size * int64(i) / int64(blocks)
		boundary, err := nextTerminatorBoundary(f, terminator, naive, size)
		if err != nil {
			return nil, err
		}
		points = append(points, boundary)
	}
	return points, nil
}

// nextTerminatorBoundary scans forward from naive, discarding the partial
// line naive lands in the middle of, then returns the offset immediately
// after the first subsequent line matching terminator, or size if none
// remains before EOF.
func nextTerminatorBoundary(f *os.File, terminator *regexp.Regexp, naive, size int64) (int64, error) {
	if naive >= size {
		return size, nil
	}
	r := &readerAt{f: f, pos: naive}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)

	pos := naive
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return size, nil
	}
	pos += int64(len(scanner.Bytes())) + 1

	for scanner.Scan() {
		line := scanner.Bytes()
		pos += int64(len(line)) + 1
		if terminator.Match(line) {
			if pos > size {
				pos = size
			}
			return pos, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return size, nil
}

// readerAt adapts an os.File plus a starting offset into an io.Reader for
// bufio.Scanner, advancing pos as it goes.
type readerAt struct {
	f   *os.File
	pos int64
}

func (r *readerAt) Read(p []byte) (int, error) {
	n, err := r.f.ReadAt(p, r.pos)
	r.pos += int64(n)
	return n, err
}

// sectionReaderAt bounds reads to [pos, end) of f, giving each worker an
// independent cursor over its own block without needing separate *os.File
// handles.
type sectionReaderAt struct {
	f   *os.File
	pos int64
	end int64
}

func (s *sectionReaderAt) Read(p []byte) (int, error) {
	if s.pos >= s.end {
		return 0, io.EOF
	}
	if remain := s.end - s.pos; int64(len(p)) > remain {
		p = p[:remain]
	}
	n, err := s.f.ReadAt(p, s.pos)
	s.pos += int64(n)
	if err == nil && s.pos >= s.end {
		err = io.EOF
	}
	return n, err
}

// ScanParallel splits path into blocks byte ranges at terminator-line
// boundaries (see splitPoints), scans each block with Scan via an errgroup of
// concurrent workers, and concatenates the results in block order. It does not
// sort; callers wanting a sorted index call SortRecords on the resulting
// records (skipped entirely under `--unsorted`, left to an external command).
func ScanParallel(path string, blocks int, terminator *regexp.Regexp, patterns Patterns, keepData bool) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("indexer: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("indexer: stat %s: %w", path, err)
	}
	size := fi.Size()
	if blocks < 1 {
		blocks = 1
	}

	bounds, err := splitPoints(f, size, blocks, terminator)
	if err != nil {
		return nil, err
	}
	starts := append([]int64{0}, bounds...)
	ends := append(bounds, size)

	results := make([][]Entry, len(starts))
	g := new(errgroup.Group)
	for i := range starts {
		i := i
		g.Go(func() error {
			start, end := starts[i], ends[i]
			if end <= start {
				return nil
			}
			section := &sectionReaderAt{f: f, pos: start, end: end}
			var local []Entry
			err := Scan(section, terminator, patterns, keepData, func(e Entry) error {
				e.Offset += start
				local = append(local, e)
				return nil
			})
			if err != nil {
				return fmt.Errorf("indexer: block %d [%d,%d): %w", i, start, end, err)
			}
			results[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Entry
	for _, block := range results {
		out = append(out, block...)
	}
	return out, nil
}

// SortRecords sorts records the way a finished index file must be sorted:
// by identifier, then ascending offset.
func SortRecords(records []index.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if c := string(a.ID); c != string(b.ID) {
			return c < string(b.ID)
		}
		return a.Offset < b.Offset
	})
}
