// Package rangeplan coalesces entry byte ranges into minimal read requests and
// partitions identifier lists into worker blocks.
package rangeplan

import (
	"sort"

	"github.com/pschou/go-ffdb/index"
)

// Mode selects how entry ranges are translated into byte-source reads.
type Mode int

const (
	// PerEntry issues one read per record; best for local files and random scatter.
	PerEntry Mode = iota
	// Merged coalesces adjacent/near-adjacent records into fewer, larger reads.
	Merged
)

// Default coalescing thresholds for merged retrieval.
const (
	DefaultCoalesceGap = 4 << 10 // 4 KiB
	DefaultCoalesceMax = 4 << 20 // 4 MiB
)

// EntrySlice records where one original record's bytes land within a ReadRequest's
// merged read.
type EntrySlice struct {
	Record       index.Record
	RequestIndex int // position of this record in the caller's original request list
	Start        int // offset within the ReadRequest's bytes
}

// ReadRequest is one planned read against a byte source.
type ReadRequest struct {
	Offset  int64
	Length  int64
	Entries []EntrySlice
}

// Plan produces a sequence of ReadRequests covering every record in records, which
// is assumed to already be associated with its position in the caller's request
// order via requestIndex (same length and order as records).
func Plan(records []index.Record, requestIndex []int, mode Mode, coalesceGap, coalesceMax int64) []ReadRequest {
	if len(records) == 0 {
		return nil
	}
	if mode == PerEntry {
		out := make([]ReadRequest, len(records))
		for i, r := range records {
			out[i] = ReadRequest{
				Offset: r.Offset,
				Length: r.Length,
				Entries: []EntrySlice{{
					Record:       r,
					RequestIndex: requestIndex[i],
					Start:        0,
				}},
			}
		}
		return out
	}

	type indexed struct {
		rec index.Record
		req int
	}
	items := make([]indexed, len(records))
	for i, r := range records {
		items[i] = indexed{rec: r, req: requestIndex[i]}
	}
	// Tie-break for identical offsets: order by length, then by original
	// request position.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.rec.Offset != b.rec.Offset {
			return a.rec.Offset < b.rec.Offset
		}
		if a.rec.Length != b.rec.Length {
			return a.rec.Length < b.rec.Length
		}
		return a.req < b.req
	})

	if coalesceGap <= 0 {
		coalesceGap = DefaultCoalesceGap
	}
	if coalesceMax <= 0 {
		coalesceMax = DefaultCoalesceMax
	}

	var out []ReadRequest
	i := 0
	for i < len(items) {
		start := items[i].rec.Offset
		end := items[i].rec.End()
		j := i + 1
		for j < len(items) {
			gap := items[j].rec.Offset - end
			candidateEnd := items[j].rec.End()
			if candidateEnd < end {
				candidateEnd = end
			}
			if gap > coalesceGap || candidateEnd-start > coalesceMax {
				break
			}
			if candidateEnd > end {
				end = candidateEnd
			}
			j++
		}
		req := ReadRequest{Offset: start, Length: end - start}
		for k := i; k < j; k++ {
			req.Entries = append(req.Entries, EntrySlice{
				Record:       items[k].rec,
				RequestIndex: items[k].req,
				Start:        int(items[k].rec.Offset - start),
			})
		}
		out = append(out, req)
		i = j
	}
	return out
}

// Partition splits ids into chunks of size blockSize for block-parallel dispatch.
// blockSize == 0 disables partitioning (a single block).
func Partition(ids [][]byte, blockSize int) [][][]byte {
	if len(ids) == 0 {
		return nil
	}
	if blockSize <= 0 {
		return [][][]byte{ids}
	}
	var out [][][]byte
	for i := 0; i < len(ids); i += blockSize {
		end := i + blockSize
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}

// DefaultBlockSize implements the "max(1, ceil(|ids|/N))" default block size.
func DefaultBlockSize(numIDs, numWorkers int) int {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	bs := (numIDs + numWorkers - 1) / numWorkers
	if bs < 1 {
		bs = 1
	}
	return bs
}
