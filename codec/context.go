package codec

// Context is the immutable bundle of key material and codec configuration threaded
// explicitly through extractor/indexer workers. There is no package-level mutable
// state here; a Context is built once (typically in a CLI's main) and passed by
// value.
type Context struct {
	Key   []byte
	Stack Stack
	CRC   bool // whether checksums are computed/verified for this flatfile
}

// NewContext validates stack and returns a ready-to-use Context.
func NewContext(key []byte, stack Stack, crc bool) (Context, error) {
	if err := stack.Validate(); err != nil {
		return Context{}, err
	}
	if stack.AES && len(key) != stack.KeyLen() {
		return Context{}, ErrUnsupportedCodec
	}
	return Context{Key: key, Stack: stack, CRC: crc}, nil
}
