// Package indexer implements FFDB's indexer: a terminator/identifier-pattern
// state machine scanned over a flatfile, emitting index.Record entries, and an
// optional re-encoding pass through the codec stack.
package indexer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
)

// Patterns bundles the compiled regexes the scanner evaluates per line, in a
// fixed order, once; the matcher is stateless across entries.
type Patterns struct {
	// Independent patterns (-i) each contribute their first capture group, or
	// every match's first capture group when All is set (-a).
	Independent []*regexp.Regexp
	// Joined patterns (-j): every capture group of a single match is concatenated
	// (colon-joined) into one compound identifier.
	Joined []*regexp.Regexp
	// All keeps every match per pattern per entry instead of only the first.
	All bool
}

// Entry is one scanned record: its identifiers, and its byte range in the input
// stream the caller scanned.
type Entry struct {
	IDs    [][]byte
	Offset int64
	Length int64
	Data   []byte // entry bytes, excluding the terminator line; populated by Scan
}

// idsForLine returns the identifiers line contributes. matched holds the
// patterns that already produced an identifier in the current entry; unless
// All is set, such a pattern is skipped.
func (p Patterns) idsForLine(line []byte, matched map[*regexp.Regexp]bool) [][]byte {
	var ids [][]byte
	for _, re := range p.Independent {
		if matched[re] && !p.All {
			continue
		}
		matches := re.FindAllSubmatch(line, -1)
		for _, m := range matches {
			if len(m) < 2 {
				continue
			}
			ids = append(ids, append([]byte(nil), m[1]...))
			matched[re] = true
			if !p.All {
				break
			}
		}
	}
	for _, re := range p.Joined {
		if matched[re] && !p.All {
			continue
		}
		matches := re.FindAllSubmatch(line, -1)
		for _, m := range matches {
			if len(m) < 2 {
				continue
			}
			var parts [][]byte
			for _, g := range m[1:] {
				parts = append(parts, g)
			}
			ids = append(ids, bytes.Join(parts, []byte(":")))
			matched[re] = true
			if !p.All {
				break
			}
		}
	}
	return ids
}

// state is the Between/InEntry state machine the scanner drives line by line.
type state int

const (
	stateBetween state = iota
	stateInEntry
)

// Scan implements the Between/InEntry state machine over r, calling emit for
// every completed entry. r is consumed line by line (bufio.Scanner); offsets are
// counted in bytes from the start of r, so callers scanning a byte-range of a
// larger file must add their own base offset to the Entry.Offset they receive.
func Scan(r io.Reader, terminator *regexp.Regexp, patterns Patterns, keepData bool, emit func(Entry) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)

	st := stateBetween
	var cur Entry
	var body bytes.Buffer
	var offset int64
	matched := make(map[*regexp.Regexp]bool)

	flush := func() error {
		if len(cur.IDs) == 0 && !keepData {
			st = stateBetween
			return nil
		}
		cur.Length = offset - cur.Offset
		if keepData {
			cur.Data = append([]byte(nil), body.Bytes()...)
			body.Reset()
		}
		st = stateBetween
		e := cur
		cur = Entry{}
		return emit(e)
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		lineLen := int64(len(line)) + 1 // account for the stripped newline

		switch st {
		case stateBetween:
			if terminator.Match(line) {
				break // ignore
			}
			clear(matched)
			if ids := patterns.idsForLine(line, matched); len(ids) > 0 {
				cur = Entry{Offset: offset, IDs: ids}
				if keepData {
					body.Write(line)
					body.WriteByte('\n')
				}
				st = stateInEntry
			}
		case stateInEntry:
			switch {
			case terminator.Match(line):
				if err := flush(); err != nil {
					return err
				}
			default:
				if ids := patterns.idsForLine(line, matched); len(ids) > 0 {
					cur.IDs = append(cur.IDs, ids...)
				}
				if keepData {
					body.Write(line)
					body.WriteByte('\n')
				}
			}
		}
		offset += lineLen
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("indexer: scanning: %w", err)
	}
	if st == stateInEntry {
		if err := flush(); err != nil {
			return err
		}
	}
	return nil
}

// RecordsFromEntries converts scanned Entry values into index.Record values, one
// per (entry, identifier) pair, applying offsetShift (the "--offset" flag) and
// an optional checksum of the entry's plaintext bytes (the "-x" flag).
func RecordsFromEntries(entries []Entry, offsetShift int64, crc bool) []index.Record {
	var out []index.Record
	for _, e := range entries {
		var checksum uint32
		if crc {
			checksum = codec.Checksum(e.Data)
		}
		for _, id := range e.IDs {
			out = append(out, index.Record{
				ID:          id,
				Offset:      e.Offset + offsetShift,
				Length:      e.Length,
				Checksum:    checksum,
				HasChecksum: crc,
			})
		}
	}
	return out
}
