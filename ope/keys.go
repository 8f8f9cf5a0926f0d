package ope

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveKeys expands the passphrase into the cipher and MAC keys via
// HKDF-SHA256 with domain-separating info strings. The derivation is
// deterministic; interoperability with other derivations is out of
// scope.
func deriveKeys(passphrase []byte) (aesKey, macKey []byte) {
	aesKey = make([]byte, 16)
	if _, err := io.ReadFull(hkdf.New(sha256.New, passphrase, nil, []byte("ope/aes")), aesKey); err != nil {
		panic(err) // cannot fail for a 16-byte read
	}
	macKey = make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, passphrase, nil, []byte("ope/mac")), macKey); err != nil {
		panic(err)
	}
	return aesKey, macKey
}
