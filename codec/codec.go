// Package codec implements FFDB's per-entry codec stack: ZLIB compression and
// AES-CBC+PKCS7 encryption, composed in the fixed order plaintext -> compress ->
// encrypt on write and the inverse on read, plus CRC32 checksumming of the decoded
// plaintext.
package codec

import "fmt"

// Encode applies ctx.Stack to plaintext in the fixed write order (compress, then
// encrypt) and returns the bytes that belong on disk.
func Encode(ctx Context, plaintext []byte) ([]byte, error) {
	if err := ctx.Stack.Validate(); err != nil {
		return nil, err
	}
	data := plaintext
	if ctx.Stack.Zlib {
		compressed, err := deflate(ctx.Stack.ZlibLevel, data)
		if err != nil {
			return nil, err
		}
		data = compressed
	}
	if ctx.Stack.AES {
		encrypted, err := encryptCBC(ctx.Key, data)
		if err != nil {
			return nil, err
		}
		data = encrypted
	}
	return data, nil
}

// Decode reverses Encode: decrypt, then decompress, in that order.
func Decode(ctx Context, encoded []byte) ([]byte, error) {
	if err := ctx.Stack.Validate(); err != nil {
		return nil, err
	}
	data := encoded
	if ctx.Stack.AES {
		decrypted, err := decryptCBC(ctx.Key, data)
		if err != nil {
			return nil, err
		}
		data = decrypted
	}
	if ctx.Stack.Zlib {
		decompressed, err := inflate(data)
		if err != nil {
			return nil, err
		}
		data = decompressed
	}
	return data, nil
}

// DecodeVerified is Decode followed by a checksum check against want when ctx.CRC
// is set; it returns ErrCorruptEntry on mismatch.
func DecodeVerified(ctx Context, encoded []byte, want uint32) ([]byte, error) {
	plaintext, err := Decode(ctx, encoded)
	if err != nil {
		return nil, err
	}
	if ctx.CRC && !VerifyChecksum(plaintext, want) {
		return nil, fmt.Errorf("%w: got %08x want %08x", ErrCorruptEntry, Checksum(plaintext), want)
	}
	return plaintext, nil
}
