package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// IVSize is the AES block size used as the per-entry IV length.
const IVSize = aes.BlockSize

func pkcs7Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	out := make([]byte, len(b)+padLen)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, ErrBadPassphrase
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(b) {
		return nil, ErrBadPassphrase
	}
	for _, c := range b[len(b)-padLen:] {
		if int(c) != padLen {
			return nil, ErrBadPassphrase
		}
	}
	return b[:len(b)-padLen], nil
}

// encryptCBC prepends a random IV and returns IV || AES-CBC-PKCS7(plaintext).
func encryptCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("codec: aes cipher: %w", err)
	}
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("codec: random iv: %w", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, IVSize+len(ciphertext))
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// decryptCBC reads IV || ciphertext written by encryptCBC and returns the plaintext.
func decryptCBC(key, encoded []byte) ([]byte, error) {
	if len(encoded) < IVSize+aes.BlockSize {
		return nil, ErrBadPassphrase
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("codec: aes cipher: %w", err)
	}
	iv, ciphertext := encoded[:IVSize], encoded[IVSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrBadPassphrase
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	return pkcs7Unpad(padded)
}
