package cliutil

import (
	"fmt"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
)

// ResolveContext builds a codec.Context from a passphrase and an index header,
// implementing the KDF Open Question resolution recorded in DESIGN.md: the
// header's own kdf/iter/salt fields are used when present; otherwise (legacy
// mode, or an absent header) codec.LegacySalt/codec.LegacyIterations are used.
// When h declares no codec at all, passphrase is ignored and an empty Context is
// returned.
func ResolveContext(passphrase string, h index.Header) (codec.Context, error) {
	if !h.Stack.AES && !h.Stack.Zlib {
		return codec.NewContext(nil, h.Stack, h.CRC)
	}
	if !h.Stack.AES {
		// Zlib-only: no key material needed.
		return codec.NewContext(nil, h.Stack, h.CRC)
	}

	salt, iterations := h.Salt, h.Iterations
	if len(salt) == 0 || iterations == 0 {
		salt, iterations = codec.LegacySalt, codec.LegacyIterations
	}
	key, err := codec.DeriveKey(passphrase, salt, iterations, h.Stack.KeyBits)
	if err != nil {
		return codec.Context{}, fmt.Errorf("ffdb: deriving key: %w", err)
	}
	return codec.NewContext(key, h.Stack, h.CRC)
}

// NewHeader builds a fresh index.Header for a newly indexed flatfile, generating
// a random salt and using codec.DefaultIterations unless legacyKDF requests the
// fixed-salt compatibility mode (DESIGN.md Open Question 1).
func NewHeader(stack codec.Stack, crc, legacyKDF bool) (index.Header, error) {
	if !stack.AES {
		return index.NewHeader(stack, "", 0, nil, crc), nil
	}
	if legacyKDF {
		return index.NewHeader(stack, "pbkdf2-sha256", codec.LegacyIterations, codec.LegacySalt, crc), nil
	}
	salt, err := randomSalt()
	if err != nil {
		return index.Header{}, err
	}
	return index.NewHeader(stack, "pbkdf2-sha256", codec.DefaultIterations, salt, crc), nil
}
