// Package bignum bridges *big.Int values to the decimal-string and
// fixed-width byte encodings used at the OPE boundaries. The engine
// itself works on math/big directly; this package only adds the
// conversions and the shared parse error.
package bignum

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrParse reports a malformed decimal input.
var ErrParse = errors.New("malformed decimal")

// ParseDecimal parses a non-negative base-10 integer. Only ASCII
// digits are accepted: no sign, no whitespace, no underscores.
func ParseDecimal(s string) (*big.Int, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrParse)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("input %q: %w", s, ErrParse)
		}
	}
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("input %q: %w", s, ErrParse)
	}
	return x, nil
}

// Decimal formats x in base 10.
func Decimal(x *big.Int) string {
	return x.Text(10)
}

// FixedBytes returns x as a big-endian buffer of exactly n bytes,
// left-padded with zeros. x must be non-negative and fit in n bytes.
func FixedBytes(x *big.Int, n int) ([]byte, error) {
	if x.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", x)
	}
	if (x.BitLen()+7)/8 > n {
		return nil, fmt.Errorf("value %s does not fit in %d bytes", x, n)
	}
	out := make([]byte, n)
	x.FillBytes(out)
	return out, nil
}

// FromBytes interprets b as a big-endian unsigned integer.
func FromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// Pow2 returns 1 << k.
func Pow2(k int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(k))
}
