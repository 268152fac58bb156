package index

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Store is the in-memory ordered multimap identifier -> list[(offset, length,
// checksum?)], built by Load. It is read-only after construction and safe for
// concurrent Lookup/LookupMany calls from multiple extractor workers.
type Store struct {
	records []Record // sorted by (ID, Offset), per the index file's own invariant
	Header  Header
}

// Load streams an index file, parsing an optional header line and every record
// line, and asserts sorted order: a record that sorts before its predecessor
// fails with ErrUnsorted, while a record equal to it is accepted.
func Load(r io.Reader) (*Store, error) {
	s := &Store{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	first := true
	var prev Record
	havePrev := false
	sawChecksum, sawNoChecksum := false, false

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if first && line[0] == '#' {
			h, err := ParseHeader(string(line[1:]))
			if err != nil {
				return nil, err
			}
			s.Header = h
			first = false
			continue
		}
		first = false

		rec, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		if rec.HasChecksum {
			sawChecksum = true
		} else {
			sawNoChecksum = true
		}
		if sawChecksum && sawNoChecksum {
			return nil, ErrMixedChecksums
		}
		if havePrev && compareID(rec, prev) < 0 {
			return nil, fmt.Errorf("%w: %q before %q", ErrUnsorted, rec.ID, prev.ID)
		}
		s.records = append(s.records, rec)
		prev, havePrev = rec, true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ffdb: reading index: %w", err)
	}
	return s, nil
}

// Len returns the total number of records held by the store.
func (s *Store) Len() int { return len(s.records) }

// idRange returns [lo, hi) spanning every record with identifier id, using binary
// search over the identifier prefix only.
func (s *Store) idRange(id []byte) (lo, hi int) {
	lo = sort.Search(len(s.records), func(i int) bool {
		return bytes.Compare(s.records[i].ID, id) >= 0
	})
	hi = sort.Search(len(s.records), func(i int) bool {
		return bytes.Compare(s.records[i].ID, id) > 0
	})
	return
}

// Lookup returns 0, 1, or many records for id according to policy. Missing
// identifiers are not an error: callers get an empty slice.
func (s *Store) Lookup(id []byte, policy DuplicatesPolicy) []Record {
	lo, hi := s.idRange(id)
	if lo == hi {
		return nil
	}
	switch policy {
	case First:
		return []Record{s.records[lo]}
	case Last:
		return []Record{s.records[hi-1]}
	default: // All
		out := make([]Record, hi-lo)
		copy(out, s.records[lo:hi])
		return out
	}
}

// LookupMany is the vectorised form of Lookup: it returns one []Record per input
// id, in input order.
func (s *Store) LookupMany(ids [][]byte, policy DuplicatesPolicy) [][]Record {
	out := make([][]Record, len(ids))
	for i, id := range ids {
		out[i] = s.Lookup(id, policy)
	}
	return out
}

// Append writes a sorted merge of s's existing records with extra into w, never
// mutating s or any backing file.
func (s *Store) Append(w io.Writer, extra []Record) error {
	merged := make([]Record, 0, len(s.records)+len(extra))
	merged = append(merged, s.records...)
	merged = append(merged, extra...)
	sort.SliceStable(merged, func(i, j int) bool { return compareID(merged[i], merged[j]) < 0 })
	return writeRecords(w, s.Header, merged)
}

// Filter streams s's records through transform in order, writing only those
// for which it returns true. transform also returns the Record to write,
// letting a caller rewrite fields (the remover uses this to apply its
// offset-shift delta table in the same pass that drops deleted records).
func (s *Store) Filter(w io.Writer, transform func(Record) (Record, bool)) error {
	kept := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if out, ok := transform(r); ok {
			kept = append(kept, out)
		}
	}
	return writeRecords(w, s.Header, kept)
}

// Records returns a read-only snapshot of every record in the store, in file order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// WriteRecords writes records (already in the caller's desired final order,
// typically sorted) to w in index-file form, with h's header line if present.
// Exported for callers like remover that compute a fresh record set outside any
// Store (the rewritten offsets no longer belong to the original store).
func WriteRecords(w io.Writer, h Header, records []Record) error {
	return writeRecords(w, h, records)
}

func writeRecords(w io.Writer, h Header, records []Record) error {
	bw := bufio.NewWriter(w)
	if h.Present() {
		if _, err := fmt.Fprintf(bw, "#%s\n", h.String()); err != nil {
			return err
		}
	}
	for _, r := range records {
		if _, err := bw.Write(formatLine(r)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
