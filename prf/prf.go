// Package prf derives the deterministic seeds that bind the AES-CTR
// stream to a context. Each partition node is identified by its
// domain and range bounds; the truncated HMAC tag over that identity
// becomes the counter for the node's gap draw, so the draw is
// independent of how the node was reached.
package prf

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

// TagSize is the truncated tag length, one AES block.
const TagSize = 16

var sep = []byte("/")

// NodeTag computes HMAC-SHA-256 under macKey over the node identity
// "dLo/dHi/rLo/rHi" (decimal), truncated to TagSize bytes.
func NodeTag(macKey []byte, dLo, dHi, rLo, rHi *big.Int) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write([]byte(dLo.Text(10)))
	mac.Write(sep)
	mac.Write([]byte(dHi.Text(10)))
	mac.Write(sep)
	mac.Write([]byte(rLo.Text(10)))
	mac.Write(sep)
	mac.Write([]byte(rHi.Text(10)))
	return mac.Sum(nil)[:TagSize]
}

// Digest16 returns the first TagSize bytes of SHA-256(msg).
func Digest16(msg []byte) []byte {
	sum := sha256.Sum256(msg)
	return sum[:TagSize]
}
