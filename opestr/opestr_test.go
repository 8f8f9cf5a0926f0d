package opestr

import (
	"errors"
	"math/big"
	"testing"

	"BCLO-OPE/ope"
)

func newScheme(t *testing.T, maxLen int) *Scheme {
	t.Helper()
	s, err := New([]byte("hello world"), maxLen)
	if err != nil {
		t.Fatalf("New(%d): %v", maxLen, err)
	}
	return s
}

func TestEncodeOrders(t *testing.T) {
	s := newScheme(t, 8)
	words := []string{"", "A", "AB", "ABC", "ABD", "B", "BAA", "Z9", "ZZ"}
	var prev *big.Int
	for _, w := range words {
		enc, err := s.Encode(w)
		if err != nil {
			t.Fatalf("encode %q: %v", w, err)
		}
		if prev != nil && enc.Cmp(prev) <= 0 {
			t.Fatalf("encoding of %q not above its predecessor", w)
		}
		dec, err := s.Decode(enc)
		if err != nil {
			t.Fatalf("decode %q: %v", w, err)
		}
		if dec != w {
			t.Fatalf("decode(encode(%q)) = %q", w, dec)
		}
		prev = enc
	}
}

func TestEncryptPreservesOrder(t *testing.T) {
	s := newScheme(t, 6)
	words := []string{"", "0", "42", "AB", "ABC", "B", "HELLO", "WORLD"}
	var prev *big.Int
	for _, w := range words {
		ct, err := s.Encrypt(w)
		if err != nil {
			t.Fatalf("encrypt %q: %v", w, err)
		}
		if prev != nil && ct.Cmp(prev) <= 0 {
			t.Fatalf("ciphertext of %q not above its predecessor", w)
		}
		back, err := s.Decrypt(ct)
		if err != nil {
			t.Fatalf("decrypt %q: %v", w, err)
		}
		if back != w {
			t.Fatalf("round-trip %q -> %q", w, back)
		}
		prev = ct
	}
}

func TestCaseFolding(t *testing.T) {
	s := newScheme(t, 6)
	a, err := s.Encrypt("hello")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := s.Encrypt("HELLO")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a.Cmp(b) != 0 {
		t.Fatal("case folding not applied before encryption")
	}
}

func TestRejects(t *testing.T) {
	s := newScheme(t, 4)
	if _, err := s.Encrypt("TOOLONG"); !errors.Is(err, ope.ErrDomain) {
		t.Fatalf("long string: err = %v, want ErrDomain", err)
	}
	if _, err := s.Encrypt("A~B"); !errors.Is(err, ope.ErrDomain) {
		t.Fatalf("bad character: err = %v, want ErrDomain", err)
	}
	if _, err := New([]byte("pw"), 0); !errors.Is(err, ope.ErrDomain) {
		t.Fatalf("zero maxLen: err = %v, want ErrDomain", err)
	}
}
