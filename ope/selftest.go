package ope

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"BCLO-OPE/bignum"
	"BCLO-OPE/prof"
)

// Report summarises a self-test run.
type Report struct {
	Rounds int
	// MaxGuessError is the largest |ct / 2^(cbits-pbits) / pt - 1|
	// observed over non-zero plaintexts: how far an adversary's
	// scale-down guess lands from the true plaintext. An empirical
	// leakage proxy, not a security bound.
	MaxGuessError float64
	Timings       []prof.Entry
}

// SelfTest draws n plaintexts uniformly from [0, 2^pbits) using src,
// asserts each round-trips through the instance, and reports the
// empirical guess error together with per-call timings.
func (o *OPE) SelfTest(n int, src io.Reader) (*Report, error) {
	bound := bignum.Pow2(o.pbits)
	shift := uint(o.cbits - o.pbits)
	maxErr := new(big.Float)

	for i := 0; i < n; i++ {
		pt, err := rand.Int(src, bound)
		if err != nil {
			return nil, fmt.Errorf("draw plaintext: %w", err)
		}

		start := time.Now()
		ct, err := o.Encrypt(pt)
		prof.Track(start, "encrypt")
		if err != nil {
			return nil, err
		}

		start = time.Now()
		back, err := o.Decrypt(ct)
		prof.Track(start, "decrypt")
		if err != nil {
			return nil, err
		}
		if back.Cmp(pt) != 0 {
			return nil, fmt.Errorf("round-trip of %s returned %s: %w", pt, back, ErrInternal)
		}

		if pt.Sign() == 0 {
			continue
		}
		guess := new(big.Int).Rsh(ct, shift)
		e := new(big.Float).Quo(new(big.Float).SetInt(guess), new(big.Float).SetInt(pt))
		e.Sub(e, big.NewFloat(1))
		e.Abs(e)
		if e.Cmp(maxErr) > 0 {
			maxErr = e
		}
	}

	f, _ := maxErr.Float64()
	return &Report{Rounds: n, MaxGuessError: f, Timings: prof.SnapshotAndReset()}, nil
}
