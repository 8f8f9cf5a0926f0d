package blockrng

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"math/big"
	"testing"
)

var testKey = []byte("0123456789abcdef")

func TestNewRejectsKeyLength(t *testing.T) {
	if _, err := New([]byte("short")); err == nil {
		t.Fatal("short key accepted")
	}
}

// The stream must equal stdlib CTR keystream for the same key and
// counter, including the carry across byte boundaries.
func TestKeystreamMatchesCTR(t *testing.T) {
	ctr := make([]byte, BlockSize)
	for i := 8; i < BlockSize; i++ {
		ctr[i] = 0xff
	}

	r, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.SetCtr(ctr)
	got := make([]byte, 0, 4*BlockSize)
	for i := 0; i < 4; i++ {
		got = append(got, r.NextBlock()...)
	}

	block, err := aes.NewCipher(testKey)
	if err != nil {
		t.Fatalf("aes: %v", err)
	}
	want := make([]byte, 4*BlockSize)
	cipher.NewCTR(block, ctr).XORKeyStream(want, want)

	if !bytes.Equal(got, want) {
		t.Fatalf("keystream mismatch\n got % x\nwant % x", got, want)
	}
}

func TestSetCtrReplays(t *testing.T) {
	r, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctr := bytes.Repeat([]byte{0xab}, BlockSize)
	r.SetCtr(ctr)
	first := r.NextBlock()
	r.SetCtr(ctr)
	second := r.NextBlock()
	if !bytes.Equal(first, second) {
		t.Fatal("same counter produced different blocks")
	}
}

func TestRandModBounds(t *testing.T) {
	r, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	n := new(big.Int).SetUint64(1000003)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		v := r.RandMod(n)
		if v.Sign() < 0 || v.Cmp(n) >= 0 {
			t.Fatalf("draw %s outside [0, %s)", v, n)
		}
		seen[v.Text(10)] = true
	}
	if len(seen) < 150 {
		t.Fatalf("only %d distinct draws out of 200", len(seen))
	}
}

func TestRandModDeterministic(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 200)
	ctr := bytes.Repeat([]byte{7}, BlockSize)

	draw := func() *big.Int {
		r, err := New(testKey)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		r.SetCtr(ctr)
		return r.RandMod(n)
	}
	a, b := draw(), draw()
	if a.Cmp(b) != 0 {
		t.Fatalf("same state gave %s and %s", a, b)
	}
	if a.BitLen() > 200 {
		t.Fatalf("draw %s outside range", a)
	}
}

func TestRandModOne(t *testing.T) {
	r, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if v := r.RandMod(big.NewInt(1)); v.Sign() != 0 {
		t.Fatalf("mod 1 draw = %s", v)
	}
}
