// Package remover implements FFDB's remover: producing a new flatfile/index pair
// containing every entry not selected for deletion, preserving order.
package remover

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/rangeplan"
)

// Options configures one remove run.
type Options struct {
	Threads int
}

func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = 1
	}
	return o
}

// byteRange is one (offset, length) span marked for deletion.
type byteRange struct {
	Offset, Length int64
}

// deltaTable is a sorted slice of (boundary, cumulativeDelta) pairs: for any
// original offset, the cumulative number of bytes deleted at or before that
// offset is deltaTable.At(offset), found with sort.Search in O(log n).
type deltaTable struct {
	boundaries []int64 // ascending end-of-deleted-range offsets
	deltas     []int64 // deltas[i] = cumulative bytes deleted by the end of boundaries[i]
}

func buildDeltaTable(deleted []byteRange) deltaTable {
	var dt deltaTable
	var running int64
	for _, r := range deleted {
		running += r.Length
		dt.boundaries = append(dt.boundaries, r.Offset+r.Length)
		dt.deltas = append(dt.deltas, running)
	}
	return dt
}

// At returns the cumulative number of bytes deleted at offsets <= offset.
func (dt deltaTable) At(offset int64) int64 {
	i := sort.Search(len(dt.boundaries), func(i int) bool { return dt.boundaries[i] > offset })
	if i == 0 {
		return 0
	}
	return dt.deltas[i-1]
}

// Remove resolves the delete list through idx under policy, streams
// flatfilePath into outFlatfile skipping deleted ranges, and streams the old
// index into outIndex with offsets shifted by the running delta.
func Remove(flatfilePath string, idx *index.Store, deleteIDs [][]byte, policy index.DuplicatesPolicy, outFlatfile, outIndex string, opts Options) error {
	opts = opts.withDefaults()

	deleted := resolveDeleteRanges(idx, deleteIDs, policy)
	if err := copyFlatfileSkipping(flatfilePath, outFlatfile, deleted); err != nil {
		return err
	}

	dt := buildDeltaTable(deleted)
	deletedSet := make(map[int64]bool, len(deleted))
	for _, r := range deleted {
		deletedSet[r.Offset] = true
	}

	records := idx.Records()
	shiftedOffsets, keep, err := computeShifts(records, dt, deletedSet, opts.Threads)
	if err != nil {
		return err
	}

	out, err := os.Create(outIndex)
	if err != nil {
		return fmt.Errorf("remover: creating %s: %w", outIndex, err)
	}
	defer out.Close()

	i := 0
	return idx.Filter(out, func(r index.Record) (index.Record, bool) {
		k := keep[i]
		r.Offset = shiftedOffsets[i]
		i++
		return r, k
	})
}

// resolveDeleteRanges resolves each identifier in deleteIDs through idx under
// policy and returns the sorted, deduplicated set of (offset, length) ranges to
// remove.
func resolveDeleteRanges(idx *index.Store, deleteIDs [][]byte, policy index.DuplicatesPolicy) []byteRange {
	seen := make(map[int64]bool)
	var ranges []byteRange
	for _, id := range deleteIDs {
		for _, rec := range idx.Lookup(id, policy) {
			if seen[rec.Offset] {
				continue
			}
			seen[rec.Offset] = true
			ranges = append(ranges, byteRange{Offset: rec.Offset, Length: rec.Length})
		}
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Offset < ranges[j].Offset })
	return ranges
}

// copyFlatfileSkipping streams src into dst, copying every byte except those
// falling inside a range in deleted.
func copyFlatfileSkipping(src, dst string, deleted []byteRange) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("remover: opening %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("remover: creating %s: %w", dst, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	var pos int64
	for _, r := range deleted {
		if r.Offset > pos {
			if err := copySpan(bw, in, pos, r.Offset-pos); err != nil {
				return err
			}
		}
		pos = r.Offset + r.Length
	}
	if fi, err := in.Stat(); err == nil && fi.Size() > pos {
		if err := copySpan(bw, in, pos, fi.Size()-pos); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func copySpan(w *bufio.Writer, f *os.File, offset, length int64) error {
	const chunkSize = 1 << 20
	buf := make([]byte, chunkSize)
	remaining := length
	pos := offset
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		nr, err := f.ReadAt(buf[:n], pos)
		if nr > 0 {
			if _, werr := w.Write(buf[:nr]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return fmt.Errorf("remover: reading span at %d: %w", pos, err)
		}
		pos += int64(nr)
		remaining -= int64(nr)
	}
	return nil
}

// computeShifts partitions records into threads chunks and computes each
// record's post-removal offset (offset - dt.At(offset)) concurrently,
// alongside a per-record keep decision (false for records whose offset is in
// deletedSet). Both returned slices stay aligned with records's own order, so
// a caller walking the same records in sequence (Store.Filter does) can zip
// them back together. dt is read-only and safe for concurrent use.
func computeShifts(records []index.Record, dt deltaTable, deletedSet map[int64]bool, threads int) ([]int64, []bool, error) {
	if len(records) == 0 {
		return nil, nil, nil
	}
	blockSize := rangeplan.DefaultBlockSize(len(records), threads)
	shiftedOffsets := make([]int64, len(records))
	keep := make([]bool, len(records))

	g := new(errgroup.Group)
	for start := 0; start < len(records); start += blockSize {
		start := start
		end := start + blockSize
		if end > len(records) {
			end = len(records)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				r := records[i]
				if deletedSet[r.Offset] {
					continue
				}
				shiftedOffsets[i] = r.Offset - dt.At(r.Offset)
				keep[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return shiftedOffsets, keep, nil
}
