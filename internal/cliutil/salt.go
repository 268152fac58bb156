package cliutil

import (
	"crypto/rand"
	"fmt"

	"github.com/pschou/go-ffdb/codec"
)

func randomSalt() ([]byte, error) {
	salt := make([]byte, codec.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("ffdb: generating salt: %w", err)
	}
	return salt, nil
}
