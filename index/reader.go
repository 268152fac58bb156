package index

import (
	"bufio"
	"fmt"
	"io"
)

// RecordReader streams an index file one record at a time, parsing the
// optional header line first. Unlike Load it never buffers the whole file;
// callers doing a merge-join against a second, fully-loaded side use this to
// keep the large side off the heap.
type RecordReader struct {
	scanner     *bufio.Scanner
	header      Header
	pending     []byte
	havePending bool
	err         error
}

// NewRecordReader opens a streaming read over r, consuming and parsing the
// header line (if present) before returning.
func NewRecordReader(r io.Reader) (*RecordReader, error) {
	rr := &RecordReader{scanner: bufio.NewScanner(r)}
	rr.scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	if rr.scanner.Scan() {
		line := rr.scanner.Bytes()
		if len(line) > 0 && line[0] == '#' {
			h, err := ParseHeader(string(line[1:]))
			if err != nil {
				return nil, err
			}
			rr.header = h
		} else {
			rr.pending = append([]byte(nil), line...)
			rr.havePending = true
		}
	}
	if err := rr.scanner.Err(); err != nil {
		return nil, fmt.Errorf("ffdb: reading index: %w", err)
	}
	return rr, nil
}

// Header returns the header parsed from the stream's first line, or the zero
// Header if the file had none.
func (rr *RecordReader) Header() Header { return rr.header }

// Next returns the next parsed record and true, or a zero Record and false at
// EOF. Call Err after a false return to distinguish EOF from a read error.
func (rr *RecordReader) Next() (Record, bool) {
	if rr.err != nil {
		return Record{}, false
	}
	if rr.havePending {
		line := rr.pending
		rr.havePending = false
		rr.pending = nil
		if len(line) == 0 {
			return rr.Next()
		}
		rec, err := parseLine(line)
		if err != nil {
			rr.err = err
			return Record{}, false
		}
		return rec, true
	}
	for rr.scanner.Scan() {
		line := rr.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			rr.err = err
			return Record{}, false
		}
		return rec, true
	}
	if err := rr.scanner.Err(); err != nil {
		rr.err = fmt.Errorf("ffdb: reading index: %w", err)
	}
	return Record{}, false
}

// Err returns the first error encountered by Next, if any.
func (rr *RecordReader) Err() error { return rr.err }
