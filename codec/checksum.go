package codec

import "hash/crc32"

// Checksum returns the CRC32 (IEEE) of decoded plaintext, for the index's optional
// checksum column.
func Checksum(plaintext []byte) uint32 {
	return crc32.ChecksumIEEE(plaintext)
}

// VerifyChecksum reports whether plaintext matches the recorded checksum.
func VerifyChecksum(plaintext []byte, want uint32) bool {
	return Checksum(plaintext) == want
}
