// Package opestr applies order-preserving encryption to bounded
// strings over a fixed ordered charset. A string is encoded as a
// base-(len(charset)+1) integer with digit 0 reserved for
// end-of-string, so "ABC" sorts after its prefix "AB"; the integer is
// then encrypted with the numeric scheme, which preserves the
// encoding order and therefore the lexicographic order of the folded
// strings.
package opestr

import (
	"fmt"
	"math/big"
	"strings"

	"BCLO-OPE/ope"
)

// Charset lists the characters a plaintext may contain, in ascending
// order. Lowercase input is folded to uppercase before encoding.
const Charset = " 0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// base is the encoding radix: one digit per charset index plus the
// end-of-string digit 0.
const base = len(Charset) + 1

// bitsPerChar is the width a single digit can require, ceil(log2(base+1)).
const bitsPerChar = 6

// Scheme encrypts strings up to a fixed length. Like the numeric
// instance it wraps, it is not safe for concurrent use.
type Scheme struct {
	maxLen  int
	baseBig *big.Int
	o       *ope.OPE
}

// New builds a scheme for strings of at most maxLen characters. The
// numeric plaintext space is maxLen*bitsPerChar bits; the ciphertext
// space adds 16 bits of spread.
func New(passphrase []byte, maxLen int) (*Scheme, error) {
	if maxLen < 1 {
		return nil, fmt.Errorf("maxLen %d < 1: %w", maxLen, ope.ErrDomain)
	}
	pbits := maxLen * bitsPerChar
	o, err := ope.New(passphrase, pbits, pbits+16)
	if err != nil {
		return nil, err
	}
	return &Scheme{maxLen: maxLen, baseBig: big.NewInt(int64(base)), o: o}, nil
}

// Encode folds str to uppercase and maps it to its order-preserving
// integer. Characters outside Charset and strings longer than the
// scheme's maximum fail with ErrDomain.
func (s *Scheme) Encode(str string) (*big.Int, error) {
	str = strings.ToUpper(str)
	if len(str) > s.maxLen {
		return nil, fmt.Errorf("string %q longer than %d: %w", str, s.maxLen, ope.ErrDomain)
	}
	out := new(big.Int)
	for i := 0; i < s.maxLen; i++ {
		out.Mul(out, s.baseBig)
		if i < len(str) {
			idx := strings.IndexByte(Charset, str[i])
			if idx < 0 {
				return nil, fmt.Errorf("character %q not in charset: %w", str[i], ope.ErrDomain)
			}
			out.Add(out, big.NewInt(int64(idx+1)))
		}
	}
	return out, nil
}

// Decode inverts Encode, dropping end-of-string digits.
func (s *Scheme) Decode(x *big.Int) (string, error) {
	if x.Sign() < 0 {
		return "", fmt.Errorf("negative encoding %s: %w", x, ope.ErrDomain)
	}
	digits := make([]int64, s.maxLen)
	rest := new(big.Int).Set(x)
	rem := new(big.Int)
	for i := s.maxLen - 1; i >= 0; i-- {
		rest.DivMod(rest, s.baseBig, rem)
		digits[i] = rem.Int64()
	}
	if rest.Sign() != 0 {
		return "", fmt.Errorf("encoding %s exceeds %d characters: %w", x, s.maxLen, ope.ErrDomain)
	}
	var sb strings.Builder
	for _, d := range digits {
		if d == 0 {
			continue
		}
		sb.WriteByte(Charset[d-1])
	}
	return sb.String(), nil
}

// Encrypt encodes str and encrypts the encoding.
func (s *Scheme) Encrypt(str string) (*big.Int, error) {
	pt, err := s.Encode(str)
	if err != nil {
		return nil, err
	}
	return s.o.Encrypt(pt)
}

// Decrypt decrypts ct and decodes the plaintext string.
func (s *Scheme) Decrypt(ct *big.Int) (string, error) {
	pt, err := s.o.Decrypt(ct)
	if err != nil {
		return "", err
	}
	return s.Decode(pt)
}
