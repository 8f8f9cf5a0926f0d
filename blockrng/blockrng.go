// Package blockrng turns AES-128 in counter mode into a deterministic
// pseudo-random byte stream. The counter is exposed so callers can
// bind the stream to a context (a partition node, a plaintext digest)
// and replay it exactly.
package blockrng

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"math/big"
)

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize

// RNG produces the AES-CTR keystream for (key, ctr). The counter is
// interpreted as a 128-bit big-endian integer and incremented once
// per block, wrapping at 2^128.
type RNG struct {
	block cipher.Block
	ctr   [BlockSize]byte
}

// New builds an RNG from a 16-byte AES key. The counter starts at zero.
func New(key []byte) (*RNG, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("blockrng: key length %d, want 16", len(key))
	}
	b, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &RNG{block: b}, nil
}

// SetCtr replaces the counter exactly. ctr must be BlockSize bytes;
// a wrong length is a caller bug.
func (r *RNG) SetCtr(ctr []byte) {
	if len(ctr) != BlockSize {
		panic(fmt.Sprintf("blockrng: counter length %d, want %d", len(ctr), BlockSize))
	}
	copy(r.ctr[:], ctr)
}

// NextBlock returns the next 16 keystream bytes and advances the counter.
func (r *RNG) NextBlock() []byte {
	out := make([]byte, BlockSize)
	r.block.Encrypt(out, r.ctr[:])
	for i := BlockSize - 1; i >= 0; i-- {
		r.ctr[i]++
		if r.ctr[i] != 0 {
			break
		}
	}
	return out
}

// RandMod returns a value uniform in [0, n), consuming whole blocks
// from the keystream. Draws at or above the largest multiple of n
// below the drawn span are rejected and redrawn, so each attempt
// succeeds with probability > 1/2. n must be positive.
func (r *RNG) RandMod(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		panic("blockrng: modulus must be positive")
	}
	blocks := (n.BitLen() + 8*BlockSize - 1) / (8 * BlockSize)
	span := new(big.Int).Lsh(big.NewInt(1), uint(blocks*8*BlockSize))
	limit := new(big.Int).Div(span, n)
	limit.Mul(limit, n)
	buf := make([]byte, 0, blocks*BlockSize)
	for {
		buf = buf[:0]
		for i := 0; i < blocks; i++ {
			buf = append(buf, r.NextBlock()...)
		}
		v := new(big.Int).SetBytes(buf)
		if v.Cmp(limit) < 0 {
			return v.Mod(v, n)
		}
	}
}
