package index

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pschou/go-ffdb/codec"
)

// Header is the optional key-value "#"-prefixed first line of an index file.
// Parsers must tolerate its absence (legacy mode).
type Header struct {
	Stack      codec.Stack
	KDF        string
	Iterations int
	Salt       []byte
	CRC        bool
	present    bool
}

// ParseHeader parses a header line (without the leading "#" and trailing newline).
func ParseHeader(line string) (Header, error) {
	h := Header{present: true}
	for _, field := range strings.Split(line, " ") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := kv[0], kv[1]
		switch key {
		case "codec":
			aes, zlib, err := codec.ParseCodec(val)
			if err != nil {
				return Header{}, err
			}
			h.Stack.AES, h.Stack.Zlib = aes, zlib
		case "aes":
			bits, err := strconv.Atoi(val)
			if err != nil {
				return Header{}, fmt.Errorf("ffdb: bad aes= header field %q: %w", val, err)
			}
			h.Stack.KeyBits = bits
		case "kdf":
			h.KDF = val
		case "iter":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Header{}, fmt.Errorf("ffdb: bad iter= header field %q: %w", val, err)
			}
			h.Iterations = n
		case "salt":
			salt, err := hex.DecodeString(val)
			if err != nil {
				return Header{}, fmt.Errorf("ffdb: bad salt= header field %q: %w", val, err)
			}
			h.Salt = salt
		case "crc":
			h.CRC = val == "1"
		}
	}
	h.Stack.ZlibLevel = 6 // not carried in the header; default mid compression level for decode purposes
	return h, h.Stack.Validate()
}

// String renders the header line (without the leading "#").
func (h Header) String() string {
	fields := []string{"codec=" + h.Stack.String()}
	if h.Stack.AES {
		fields = append(fields, fmt.Sprintf("aes=%d", h.Stack.KeyBits))
	}
	if h.KDF != "" {
		fields = append(fields, "kdf="+h.KDF)
		fields = append(fields, fmt.Sprintf("iter=%d", h.Iterations))
		fields = append(fields, "salt="+hex.EncodeToString(h.Salt))
	}
	if h.CRC {
		fields = append(fields, "crc=1")
	}
	return strings.Join(fields, " ")
}

// Present reports whether this Header was actually parsed from a line (as opposed
// to being the zero value used for legacy indexes with no header at all).
func (h Header) Present() bool { return h.present }

// NewHeader builds a Header for a freshly created index, ready to be written by
// WriteRecords/Append (its header line will render, unlike the legacy zero
// value). Used by ffdb-index and cliutil when a new index declares a codec
// stack or checksums.
func NewHeader(stack codec.Stack, kdf string, iterations int, salt []byte, crc bool) Header {
	return Header{Stack: stack, KDF: kdf, Iterations: iterations, Salt: salt, CRC: crc, present: true}
}
