package testutil

import (
	"parley-go/internal/encryption"
	"parley-go/internal/parley"
)

// NewTestEncryptor creates a configured test encryptor with an empty passphrase.
func NewTestEncryptor() parley.Encryptor {
	return encryption.NewTestEncryptor()
}
