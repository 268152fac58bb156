package codec

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// LegacySalt and LegacyIterations back the fixed-salt compatibility mode: used
// only when an index header declares kdf=pbkdf2-sha256 without its own
// salt/iter fields, or is entirely absent.
var LegacySalt = []byte("ffdb-legacy-compat-salt-v1")

const LegacyIterations = 1000

// DefaultIterations is written into freshly created index headers.
const DefaultIterations = 200000

// SaltSize is the number of random bytes generated for a fresh index header's salt.
const SaltSize = 16

// DeriveKey derives an AES key of keyBits from passphrase using PBKDF2-HMAC-SHA256.
func DeriveKey(passphrase string, salt []byte, iterations, keyBits int) ([]byte, error) {
	st := Stack{AES: true, KeyBits: keyBits}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, st.KeyLen(), sha256.New), nil
}
