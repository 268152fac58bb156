package index

import (
	"bytes"
	"fmt"
	"strconv"
)

// field separator used by the index file format.
const sep = '\t'

// parseLine parses one "identifier<TAB>offset<TAB>length[<TAB>checksum]" line.
func parseLine(line []byte) (Record, error) {
	fields := bytes.Split(line, []byte{sep})
	if len(fields) < 3 || len(fields) > 4 {
		return Record{}, fmt.Errorf("ffdb: malformed index line %q", line)
	}
	offset, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("ffdb: bad offset in %q: %w", line, err)
	}
	length, err := strconv.ParseInt(string(fields[2]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("ffdb: bad length in %q: %w", line, err)
	}
	rec := Record{ID: append([]byte(nil), fields[0]...), Offset: offset, Length: length}
	if len(fields) == 4 {
		cksum, err := strconv.ParseUint(string(fields[3]), 16, 32)
		if err != nil {
			return Record{}, fmt.Errorf("ffdb: bad checksum in %q: %w", line, err)
		}
		rec.Checksum = uint32(cksum)
		rec.HasChecksum = true
	}
	return rec, nil
}

// FormatLine renders a Record into its on-disk TSV form (without the trailing
// newline), for callers writing records one at a time outside of
// WriteRecords/Append — the merger's streamed merge-join does this so it
// never needs index's whole record set in memory.
func FormatLine(r Record) []byte {
	return formatLine(r)
}

// formatLine renders a Record back into its on-disk TSV form, without the trailing
// newline.
func formatLine(r Record) []byte {
	var buf bytes.Buffer
	buf.Write(r.ID)
	buf.WriteByte(sep)
	buf.WriteString(strconv.FormatInt(r.Offset, 10))
	buf.WriteByte(sep)
	buf.WriteString(strconv.FormatInt(r.Length, 10))
	if r.HasChecksum {
		buf.WriteByte(sep)
		buf.WriteString(fmt.Sprintf("%08x", r.Checksum))
	}
	return buf.Bytes()
}
