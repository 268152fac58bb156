package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// zlibHeaderOK reports whether the first two bytes look like a valid ZLIB header
// (RFC1950): CMF low nibble must be 8 (deflate), and (CMF*256+FLG) must be a
// multiple of 31. Used to distinguish a bad passphrase from a genuine ZLIB error
// without first paying for a full NewReader+Close round trip.
func zlibHeaderOK(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	if b[0]&0x0f != 8 {
		return false
	}
	return (uint16(b[0])<<8+uint16(b[1]))%31 == 0
}

func deflate(level int, plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("codec: zlib writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("codec: zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	if !zlibHeaderOK(compressed) {
		return nil, ErrBadPassphrase
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, ErrBadPassphrase
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrHeader) {
			return nil, ErrBadPassphrase
		}
		return nil, fmt.Errorf("codec: zlib read: %w", err)
	}
	return out, nil
}
