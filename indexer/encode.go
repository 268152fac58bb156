package indexer

import (
	"fmt"
	"io"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
)

// EncodeFlatfile re-emits every scanned entry through ctx's codec stack into w,
// producing the index.Record list for the freshly written file: the indexer
// writes a new flatfile and the emitted index refers to the new file's offsets.
// Checksums, when crc is set, are computed over the original plaintext entry
// bytes before encoding. offsetShift implements `--offset`, letting a file
// produced this way be prefixed later by the merger.
func EncodeFlatfile(w io.Writer, entries []Entry, ctx codec.Context, crc bool, offsetShift int64) ([]index.Record, error) {
	var out []index.Record
	var pos int64
	for _, e := range entries {
		var checksum uint32
		if crc {
			checksum = codec.Checksum(e.Data)
		}
		encoded, err := codec.Encode(ctx, e.Data)
		if err != nil {
			return nil, fmt.Errorf("indexer: encoding entry at %d: %w", e.Offset, err)
		}
		if _, err := w.Write(encoded); err != nil {
			return nil, fmt.Errorf("indexer: writing encoded entry: %w", err)
		}
		for _, id := range e.IDs {
			out = append(out, index.Record{
				ID:          id,
				Offset:      pos + offsetShift,
				Length:      int64(len(encoded)),
				Checksum:    checksum,
				HasChecksum: crc,
			})
		}
		pos += int64(len(encoded))
	}
	return out, nil
}

// Suffix returns the filename suffix used for a re-encoded flatfile: ".enc" when
// only encryption is active, ".xz" when ZLIB is in the stack (with or without
// encryption).
func Suffix(stack codec.Stack) string {
	switch {
	case stack.Zlib:
		return ".xz"
	case stack.AES:
		return ".enc"
	default:
		return ""
	}
}
