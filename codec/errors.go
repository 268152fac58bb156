package codec

import "errors"

// Sentinel errors for the codec layer's failure taxonomy.
var (
	// ErrBadPassphrase is returned when CBC padding fails to validate, or when
	// padding validates but the decrypted bytes fail a subsequent ZLIB header check.
	ErrBadPassphrase = errors.New("ffdb: bad passphrase")

	// ErrCorruptEntry is returned when a decoded entry's CRC32 does not match the
	// checksum recorded alongside it in the index.
	ErrCorruptEntry = errors.New("ffdb: corrupt entry (checksum mismatch)")

	// ErrUnsupportedCodec is returned when a Stack describes a codec configuration
	// this build cannot service (e.g. an unrecognized key size).
	ErrUnsupportedCodec = errors.New("ffdb: unsupported codec configuration")
)
