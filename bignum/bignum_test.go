package bignum

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	x, err := ParseDecimal("340282366920938463463374607431768211456")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := new(big.Int).Lsh(big.NewInt(1), 128)
	if x.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", x, want)
	}
	if Decimal(x) != "340282366920938463463374607431768211456" {
		t.Fatalf("decimal round-trip: %s", Decimal(x))
	}
}

func TestParseDecimalRejects(t *testing.T) {
	for _, in := range []string{"", "-5", "+5", " 12", "12 ", "0x10", "1_000", "12a"} {
		if _, err := ParseDecimal(in); !errors.Is(err, ErrParse) {
			t.Fatalf("input %q: err = %v, want ErrParse", in, err)
		}
	}
}

func TestFixedBytes(t *testing.T) {
	b, err := FixedBytes(big.NewInt(0x0102), 4)
	if err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if !bytes.Equal(b, []byte{0, 0, 1, 2}) {
		t.Fatalf("got % x", b)
	}
	if FromBytes(b).Cmp(big.NewInt(0x0102)) != 0 {
		t.Fatalf("from bytes: %s", FromBytes(b))
	}
	if _, err := FixedBytes(big.NewInt(1<<16), 2); err == nil {
		t.Fatal("overflow accepted")
	}
	if _, err := FixedBytes(big.NewInt(-1), 2); err == nil {
		t.Fatal("negative accepted")
	}
}

func TestPow2(t *testing.T) {
	if Pow2(0).Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("2^0 = %s", Pow2(0))
	}
	if Pow2(10).Cmp(big.NewInt(1024)) != 0 {
		t.Fatalf("2^10 = %s", Pow2(10))
	}
	if got := Pow2(300).BitLen(); got != 301 {
		t.Fatalf("2^300 bit length = %d", got)
	}
}
