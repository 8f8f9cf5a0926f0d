// Package ope implements the Boldyreva-Chenette-Lee-O'Neill
// order-preserving encryption scheme: a deterministic keyed map from
// [0, 2^pbits) into [0, 2^cbits) such that plaintext order carries
// over to ciphertexts, allowing range and sort queries on an
// untrusted store.
//
// The map is defined by a lazily explored binary partition of the
// ciphertext range. Each node halves its range and draws from the
// hypergeometric distribution how many plaintexts fall left of the
// cut; the draw is seeded from an HMAC over the node identity, so it
// is a pure function of the key and the node. Encryption walks the
// partition to the plaintext's leaf bucket and picks a position
// inside it from a stream seeded by the plaintext digest.
package ope

import (
	"errors"
	"fmt"
	"math/big"

	"BCLO-OPE/bignum"
	"BCLO-OPE/blockrng"
	"BCLO-OPE/hgd"
	"BCLO-OPE/prf"
)

var (
	// ErrDomain reports a value outside the configured plaintext or
	// ciphertext space, or an invalid space configuration.
	ErrDomain = errors.New("value outside domain")
	// ErrInternal reports a broken engine invariant.
	ErrInternal = errors.New("internal invariant violated")
)

// MaxCipherBits bounds the ciphertext width an instance accepts.
const MaxCipherBits = 4096

var one = big.NewInt(1)

// OPE is an encryption instance for a fixed passphrase and domain
// configuration. The gap cache is mutated during calls, so an
// instance must not be shared between goroutines without external
// serialisation; instances built from the same passphrase and widths
// produce identical ciphertexts.
type OPE struct {
	pbits  int
	cbits  int
	aesKey []byte
	macKey []byte

	dgapCache map[string]*big.Int
}

// New builds an instance mapping [0, 2^pbits) into [0, 2^cbits).
// Requires 1 <= pbits <= cbits <= MaxCipherBits.
func New(passphrase []byte, pbits, cbits int) (*OPE, error) {
	if pbits < 1 {
		return nil, fmt.Errorf("pbits %d < 1: %w", pbits, ErrDomain)
	}
	if cbits < pbits {
		return nil, fmt.Errorf("cbits %d < pbits %d: %w", cbits, pbits, ErrDomain)
	}
	if cbits > MaxCipherBits {
		return nil, fmt.Errorf("cbits %d > %d: %w", cbits, MaxCipherBits, ErrDomain)
	}
	aesKey, macKey := deriveKeys(passphrase)
	return &OPE{
		pbits:     pbits,
		cbits:     cbits,
		aesKey:    aesKey,
		macKey:    macKey,
		dgapCache: make(map[string]*big.Int),
	}, nil
}

// PlainBits returns the plaintext width in bits.
func (o *OPE) PlainBits() int { return o.pbits }

// CipherBits returns the ciphertext width in bits.
func (o *OPE) CipherBits() int { return o.cbits }

// domainRange is the leaf of a partition walk: plaintext d owns the
// ciphertext bucket [rLo, rHi].
type domainRange struct {
	d   *big.Int
	rLo *big.Int
	rHi *big.Int
}

// Encrypt maps pt into its ciphertext. pt must lie in [0, 2^pbits).
func (o *OPE) Encrypt(pt *big.Int) (*big.Int, error) {
	if pt.Sign() < 0 || pt.BitLen() > o.pbits {
		return nil, fmt.Errorf("plaintext %s outside [0, 2^%d): %w", pt, o.pbits, ErrDomain)
	}
	dr, err := o.search(func(d, _ *big.Int) bool { return pt.Cmp(d) < 0 })
	if err != nil {
		return nil, err
	}
	if dr.d.Cmp(pt) != 0 {
		return nil, fmt.Errorf("leaf %s does not match plaintext %s: %w", dr.d, pt, ErrInternal)
	}

	// The in-bucket position comes from a fresh stream seeded by the
	// plaintext digest, not from the search PRNG, so it does not
	// depend on the traversal.
	prng, err := blockrng.New(o.aesKey)
	if err != nil {
		return nil, fmt.Errorf("bucket prng: %v: %w", err, ErrInternal)
	}
	prng.SetCtr(prf.Digest16([]byte(pt.Text(10))))
	nrange := rangeSize(dr.rLo, dr.rHi)
	return new(big.Int).Add(dr.rLo, prng.RandMod(nrange)), nil
}

// Decrypt recovers the plaintext owning the bucket that contains ct.
// ct must lie in [0, 2^cbits).
func (o *OPE) Decrypt(ct *big.Int) (*big.Int, error) {
	if ct.Sign() < 0 || ct.BitLen() > o.cbits {
		return nil, fmt.Errorf("ciphertext %s outside [0, 2^%d): %w", ct, o.cbits, ErrDomain)
	}
	dr, err := o.search(func(_, r *big.Int) bool { return ct.Cmp(r) < 0 })
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(dr.d), nil
}

// search walks the partition from the root until the domain shrinks
// to a single plaintext. goLow is given the child boundary
// (d_lo+dgap, r_lo+rgap) and decides the direction; encryption
// compares the plaintext against the domain cut, decryption the
// ciphertext against the range cut.
func (o *OPE) search(goLow func(d, r *big.Int) bool) (*domainRange, error) {
	prng, err := blockrng.New(o.aesKey)
	if err != nil {
		return nil, fmt.Errorf("search prng: %v: %w", err, ErrInternal)
	}

	dLo := big.NewInt(0)
	dHi := new(big.Int).Sub(bignum.Pow2(o.pbits), one)
	rLo := big.NewInt(0)
	rHi := new(big.Int).Sub(bignum.Pow2(o.cbits), one)

	for {
		ndomain := rangeSize(dLo, dHi)
		nrange := rangeSize(rLo, rHi)
		if nrange.Cmp(ndomain) < 0 {
			return nil, fmt.Errorf("range %s smaller than domain %s: %w", nrange, ndomain, ErrInternal)
		}
		if ndomain.Cmp(one) == 0 {
			return &domainRange{d: dLo, rLo: rLo, rHi: rHi}, nil
		}

		// Reset the counter for this node whether or not the previous
		// node consumed stream for its HGD draw.
		prng.SetCtr(prf.NodeTag(o.macKey, dLo, dHi, rLo, rHi))

		rgap := new(big.Int).Rsh(nrange, 1)
		rMid := new(big.Int).Add(rLo, rgap)

		dgap, ok := o.dgapCache[rMid.Text(10)]
		if !ok {
			black := new(big.Int).Sub(nrange, ndomain)
			dgap, err = hgd.Sample(rgap, ndomain, black, prng)
			if err != nil {
				return nil, fmt.Errorf("gap draw: %v: %w", err, ErrInternal)
			}
			o.dgapCache[rMid.Text(10)] = dgap
		}
		dMid := new(big.Int).Add(dLo, dgap)

		low := goLow(dMid, rMid)
		// A child owning zero plaintexts is only reachable when
		// decrypting a value no encryption produced; steer to the
		// populated sibling so the walk terminates.
		if low && dgap.Sign() == 0 {
			low = false
		} else if !low && dgap.Cmp(ndomain) == 0 {
			low = true
		}

		if low {
			dHi = new(big.Int).Sub(dMid, one)
			rHi = new(big.Int).Sub(rMid, one)
		} else {
			dLo = dMid
			rLo = rMid
		}
	}
}

// rangeSize returns hi - lo + 1.
func rangeSize(lo, hi *big.Int) *big.Int {
	out := new(big.Int).Sub(hi, lo)
	return out.Add(out, one)
}
