package codec

import "fmt"

// Stack describes which transforms are active for the entries of one flatfile.
// It is parsed from, and serialized to, the index file's optional header line
// ("codec=" / "aes=" fields).
type Stack struct {
	Zlib      bool
	ZlibLevel int // 0-9, only meaningful when Zlib is true
	AES       bool
	KeyBits   int // 128, 192 or 256, only meaningful when AES is true
}

// None is the codec stack for plaintext entries.
var None = Stack{}

// Validate rejects a Stack this build cannot service.
func (s Stack) Validate() error {
	if s.AES {
		switch s.KeyBits {
		case 128, 192, 256:
		default:
			return fmt.Errorf("%w: aes key size %d", ErrUnsupportedCodec, s.KeyBits)
		}
	}
	if s.Zlib && (s.ZlibLevel < 0 || s.ZlibLevel > 9) {
		return fmt.Errorf("%w: zlib level %d", ErrUnsupportedCodec, s.ZlibLevel)
	}
	return nil
}

// KeyLen returns the AES key length in bytes implied by KeyBits.
func (s Stack) KeyLen() int {
	return s.KeyBits / 8
}

// String renders the stack the way the index header's "codec=" field expects.
func (s Stack) String() string {
	switch {
	case s.AES && s.Zlib:
		return "aes+zlib"
	case s.AES:
		return "aes"
	case s.Zlib:
		return "zlib"
	default:
		return "none"
	}
}

// ParseCodec parses the "codec=" header value into the codec-kind portion of a Stack
// (AES/Zlib flags only; KeyBits/ZlibLevel come from separate header fields).
func ParseCodec(s string) (aes, zlib bool, err error) {
	switch s {
	case "", "none":
		return false, false, nil
	case "zlib":
		return false, true, nil
	case "aes":
		return true, false, nil
	case "aes+zlib":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("%w: codec=%q", ErrUnsupportedCodec, s)
	}
}
