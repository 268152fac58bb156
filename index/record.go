// Package index implements FFDB's positional index: the sorted on-disk text file
// mapping identifiers to (offset, length[, checksum]) tuples, and the in-memory
// ordered multimap built from it.
package index

import "bytes"

// Record is one parsed line of the index file.
type Record struct {
	ID          []byte
	Offset      int64
	Length      int64
	Checksum    uint32
	HasChecksum bool
}

// End returns the byte offset one past the record's encoded entry.
func (r Record) End() int64 { return r.Offset + r.Length }

// compareID orders two records the way the index file is sorted: by ID, then by
// ascending offset.
func compareID(a, b Record) int {
	if c := bytes.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	if a.Offset < b.Offset {
		return -1
	}
	if a.Offset > b.Offset {
		return 1
	}
	return 0
}

// DuplicatesPolicy selects which of several records sharing an identifier to return.
type DuplicatesPolicy int

const (
	First DuplicatesPolicy = iota
	Last
	All
)
