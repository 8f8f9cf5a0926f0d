// Package hgd samples the hypergeometric distribution H(k; n1, n2):
// the number of white balls obtained when k balls are drawn without
// replacement from an urn of n1 white and n2 black balls. Parameters
// may be thousands of bits wide, so the urn is never materialised and
// all real arithmetic runs on big.Float at a precision tracking the
// operand width.
//
// The sampler follows the two-regime structure of Kachitvichyanukul
// and Schmeiser: an inverse-transform walk when the mode sits close
// to the lower support bound, and the H2PE rejection scheme (mode
// rectangle plus two exponential tails, squeeze acceptance) elsewhere.
// All entropy comes from the supplied block RNG, so a fixed RNG state
// always yields the same variate.
package hgd

import (
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"

	"BCLO-OPE/blockrng"
)

// H2PE squeeze slack constants from the published algorithm.
const (
	deltaL = 0.0078
	deltaU = 0.0034
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// sampler carries the working precision and the entropy source for
// one draw.
type sampler struct {
	prec uint
	rng  *blockrng.RNG
	span *big.Int // 2^prec, the uniform-draw denominator
}

// Sample draws H(k; n1, n2) using rng as the sole entropy source.
// The result lies in [max(0, k-n2), min(k, n1)]. Parameters must
// satisfy k, n1, n2 >= 0 and k <= n1+n2.
func Sample(k, n1, n2 *big.Int, rng *blockrng.RNG) (*big.Int, error) {
	if k.Sign() < 0 || n1.Sign() < 0 || n2.Sign() < 0 {
		return nil, fmt.Errorf("hgd: negative parameter k=%s n1=%s n2=%s", k, n1, n2)
	}
	tot := new(big.Int).Add(n1, n2)
	if k.Cmp(tot) > 0 {
		return nil, fmt.Errorf("hgd: sample size %s exceeds population %s", k, tot)
	}

	bits := new(big.Int).Add(tot, k).BitLen() + 64
	if bits < 128 {
		bits = 128
	}
	s := &sampler{
		prec: uint(bits),
		rng:  rng,
		span: new(big.Int).Lsh(one, uint(bits)),
	}
	return s.draw(k, n1, n2, tot), nil
}

// draw implements the K&S skeleton: canonicalise so the white count
// is the smaller colour and the sample the smaller half, dispatch to
// the degenerate / inverse / H2PE regime, then undo the relabelling.
func (s *sampler) draw(kk, nn1, nn2, tot *big.Int) *big.Int {
	// Relabel colours so n1 <= n2.
	n1i, n2i := nn1, nn2
	if nn1.Cmp(nn2) >= 0 {
		n1i, n2i = nn2, nn1
	}
	// Sample the smaller of k and tot-k.
	ki := kk
	if d := new(big.Int).Lsh(kk, 1); d.Cmp(tot) >= 0 {
		ki = new(big.Int).Sub(tot, kk)
	}

	minJX := new(big.Int).Sub(ki, n2i)
	if minJX.Sign() < 0 {
		minJX.SetInt64(0)
	}
	maxJX := ki
	if n1i.Cmp(ki) < 0 {
		maxJX = n1i
	}

	var ix *big.Int
	switch {
	case minJX.Cmp(maxJX) == 0:
		ix = new(big.Int).Set(minJX)
	default:
		// mode = floor((k+1)(n1+1)/(tot+2))
		m := new(big.Int).Add(ki, one)
		m.Mul(m, new(big.Int).Add(n1i, one))
		m.Div(m, new(big.Int).Add(tot, two))
		if new(big.Int).Sub(m, minJX).Cmp(big.NewInt(10)) < 0 {
			ix = s.inverse(ki, n1i, n2i, tot, minJX, maxJX)
		} else {
			ix = s.h2pe(ki, n1i, n2i, tot, m, minJX, maxJX)
		}
	}

	// Undo the relabelling.
	if d := new(big.Int).Lsh(kk, 1); d.Cmp(tot) >= 0 {
		if nn1.Cmp(nn2) > 0 {
			ix.Add(ix, kk)
			ix.Sub(ix, nn2)
		} else {
			ix.Sub(nn1, ix)
		}
	} else if nn1.Cmp(nn2) > 0 {
		ix.Sub(kk, ix)
	}
	return ix
}

// inverse walks the pmf upward from the support minimum, subtracting
// successive probabilities from a single uniform draw.
func (s *sampler) inverse(k, n1, n2, tot, minJX, maxJX *big.Int) *big.Int {
	kf := s.fi(k)
	n1f := s.fi(n1)
	n2f := s.fi(n2)
	totf := s.fi(tot)

	// ln P(X = minJX); after canonicalisation k <= n2, so the support
	// minimum is 0, but both closed forms are kept for clarity.
	var lw *big.Float
	if k.Cmp(n2) < 0 {
		lw = s.afc(n2f)
		lw.Add(lw, s.afc(s.sub(totf, kf)))
		lw.Sub(lw, s.afc(s.sub(n2f, kf)))
		lw.Sub(lw, s.afc(totf))
	} else {
		lw = s.afc(n1f)
		lw.Add(lw, s.afc(kf))
		lw.Sub(lw, s.afc(s.sub(kf, n2f)))
		lw.Sub(lw, s.afc(totf))
	}
	w := bigfloat.Exp(lw)

	for {
		p := s.copy(w)
		ix := new(big.Int).Set(minJX)
		u := s.unit()
		for u.Cmp(p) > 0 {
			u.Sub(u, p)
			// p *= (n1-ix)(k-ix) / ((ix+1)(n2-k+ix+1))
			ixf := s.fi(ix)
			p.Mul(p, s.sub(n1f, ixf))
			p.Mul(p, s.sub(kf, ixf))
			ix.Add(ix, one)
			ixf = s.fi(ix)
			p.Quo(p, ixf)
			p.Quo(p, s.add(s.sub(n2f, kf), ixf))
			if ix.Cmp(maxJX) > 0 {
				break
			}
		}
		if ix.Cmp(maxJX) <= 0 {
			return ix
		}
	}
}

// h2pe is the rejection regime: a rectangle spanning the mode with an
// exponential tail on each side, accepted through the squeeze bounds
// and, when those are inconclusive, the exact log-pmf ratio.
func (s *sampler) h2pe(k, n1, n2, tot, m, minJX, maxJX *big.Int) *big.Int {
	kf := s.fi(k)
	n1f := s.fi(n1)
	n2f := s.fi(n2)
	totf := s.fi(tot)
	mf := s.fi(m)

	// sd^2 = (tot-k) k n1 n2 / ((tot-1) tot^2)
	sd := s.sub(totf, kf)
	sd.Mul(sd, kf)
	sd.Mul(sd, n1f)
	sd.Mul(sd, n2f)
	sd.Quo(sd, s.sub(totf, s.f(1)))
	sd.Quo(sd, totf)
	sd.Quo(sd, totf)
	sd.Sqrt(sd)

	// d = floor(1.5 sd) + 0.5
	d := s.f(1.5)
	d.Mul(d, sd)
	df, _ := d.Int(nil)
	d = s.fi(df)
	d.Add(d, s.f(0.5))

	xl := s.sub(mf, d)
	xl.Add(xl, s.f(0.5))
	xr := s.add(mf, d)
	xr.Add(xr, s.f(0.5))

	a := s.afc(mf)
	a.Add(a, s.afc(s.sub(n1f, mf)))
	a.Add(a, s.afc(s.sub(kf, mf)))
	a.Add(a, s.afc(s.add(s.sub(n2f, kf), mf)))

	expArg := s.copy(a)
	expArg.Sub(expArg, s.afc(xl))
	expArg.Sub(expArg, s.afc(s.sub(n1f, xl)))
	expArg.Sub(expArg, s.afc(s.sub(kf, xl)))
	expArg.Sub(expArg, s.afc(s.add(s.sub(n2f, kf), xl)))
	kl := bigfloat.Exp(expArg)

	xr1 := s.sub(xr, s.f(1))
	expArg = s.copy(a)
	expArg.Sub(expArg, s.afc(xr1))
	expArg.Sub(expArg, s.afc(s.sub(n1f, xr1)))
	expArg.Sub(expArg, s.afc(s.sub(kf, xr1)))
	expArg.Sub(expArg, s.afc(s.add(s.sub(n2f, kf), xr1)))
	kr := bigfloat.Exp(expArg)

	// lamdl = -ln( xl (n2-k+xl) / ((n1-xl+1)(k-xl+1)) )
	ratio := s.copy(xl)
	ratio.Mul(ratio, s.add(s.sub(n2f, kf), xl))
	ratio.Quo(ratio, s.add(s.sub(n1f, xl), s.f(1)))
	ratio.Quo(ratio, s.add(s.sub(kf, xl), s.f(1)))
	lamdl := bigfloat.Log(ratio)
	lamdl.Neg(lamdl)

	// lamdr = -ln( (n1-xr+1)(k-xr+1) / (xr (n2-k+xr)) )
	ratio = s.add(s.sub(n1f, xr), s.f(1))
	ratio.Mul(ratio, s.add(s.sub(kf, xr), s.f(1)))
	ratio.Quo(ratio, xr)
	ratio.Quo(ratio, s.add(s.sub(n2f, kf), xr))
	lamdr := bigfloat.Log(ratio)
	lamdr.Neg(lamdr)

	p1 := s.add(d, d)
	p2 := s.add(p1, s.quo(kl, lamdl))
	p3 := s.add(p2, s.quo(kr, lamdr))

	for {
		u := s.unit()
		u.Mul(u, p3)
		v := s.unit()
		if v.Sign() == 0 {
			continue
		}

		var ixf *big.Float
		switch {
		case u.Cmp(p1) < 0:
			ixf = s.add(xl, u)
		case u.Cmp(p2) <= 0:
			ixf = s.add(xl, s.quo(bigfloat.Log(v), lamdl))
			if ixf.Cmp(s.fi(minJX)) < 0 {
				continue
			}
			v.Mul(v, s.sub(u, p1))
			v.Mul(v, lamdl)
		default:
			ixf = s.sub(xr, s.quo(bigfloat.Log(v), lamdr))
			if ixf.Cmp(s.fi(maxJX)) > 0 {
				continue
			}
			v.Mul(v, s.sub(u, p2))
			v.Mul(v, lamdr)
		}
		ix, _ := ixf.Int(nil)

		if s.accept(ix, v, a, kf, n1f, n2f, mf, m) {
			return ix
		}
	}
}

// accept runs the H2PE acceptance tests for candidate ix against the
// envelope ordinate v.
func (s *sampler) accept(ix *big.Int, v, a, kf, n1f, n2f, mf *big.Float, m *big.Int) bool {
	gap := new(big.Int).Sub(ix, m)
	gap.Abs(gap)

	if m.Cmp(big.NewInt(100)) < 0 || ix.Cmp(big.NewInt(50)) <= 0 {
		if gap.Cmp(big.NewInt(10000)) <= 0 {
			return v.Cmp(s.pmfRatio(ix, m, kf, n1f, n2f)) <= 0
		}
		// A tail draw this far out is cheaper to test exactly than to
		// walk the pmf ratio term by term.
		return s.exactTest(ix, v, a, kf, n1f, n2f)
	}

	y := s.fi(ix)
	y1 := s.add(y, s.f(1))
	ym := s.sub(y, mf)
	yn := s.add(s.sub(n1f, y), s.f(1))
	yk := s.add(s.sub(kf, y), s.f(1))
	nk := s.add(s.sub(n2f, kf), y1)

	r := s.quo(ym, y1)
	r.Neg(r)
	s2 := s.quo(ym, yn)
	t := s.quo(ym, yk)
	e := s.quo(ym, nk)
	e.Neg(e)

	g := s.quo(s.mul(yn, yk), s.mul(y1, nk))
	g.Sub(g, s.f(1))
	dg := s.f(1)
	if g.Sign() < 0 {
		dg = s.add(s.f(1), g)
	}
	gu := s.cubic(g)
	g4 := s.mul(s.mul(g, g), s.mul(g, g))
	gl := s.sub(gu, s.quo(g4, s.mul(s.f(4), dg)))

	xm := s.add(mf, s.f(0.5))
	xn := s.add(s.sub(n1f, mf), s.f(0.5))
	xk := s.add(s.sub(kf, mf), s.f(0.5))
	nm := s.add(s.sub(n2f, kf), xm)

	ub := s.mul(y, gu)
	ub.Sub(ub, s.mul(mf, gl))
	ub.Add(ub, s.f(deltaU))
	ub.Add(ub, s.mul(xm, s.cubic(r)))
	ub.Add(ub, s.mul(xn, s.cubic(s2)))
	ub.Add(ub, s.mul(xk, s.cubic(t)))
	ub.Add(ub, s.mul(nm, s.cubic(e)))

	alv := bigfloat.Log(v)
	if alv.Cmp(ub) > 0 {
		return false
	}

	dr := s.quartic(xm, r)
	ds := s.quartic(xn, s2)
	dt := s.quartic(xk, t)
	de := s.quartic(nm, e)

	lower := s.copy(ub)
	sum := s.add(s.add(dr, ds), s.add(dt, de))
	sum.Mul(sum, s.f(0.25))
	lower.Sub(lower, sum)
	lower.Add(lower, s.mul(s.add(y, mf), s.sub(gl, gu)))
	lower.Sub(lower, s.f(deltaL))
	if alv.Cmp(lower) < 0 {
		return true
	}
	return s.exactTest(ix, v, a, kf, n1f, n2f)
}

// pmfRatio computes P(X=ix)/P(X=m) by the product of successive pmf
// ratios; callers bound |ix - m|.
func (s *sampler) pmfRatio(ix, m *big.Int, kf, n1f, n2f *big.Float) *big.Float {
	f := s.f(1)
	switch cmp := m.Cmp(ix); {
	case cmp < 0:
		for i := new(big.Int).Add(m, one); i.Cmp(ix) <= 0; i.Add(i, one) {
			iF := s.fi(i)
			f.Mul(f, s.add(s.sub(n1f, iF), s.f(1)))
			f.Mul(f, s.add(s.sub(kf, iF), s.f(1)))
			f.Quo(f, s.add(s.sub(n2f, kf), iF))
			f.Quo(f, iF)
		}
	case cmp > 0:
		for i := new(big.Int).Add(ix, one); i.Cmp(m) <= 0; i.Add(i, one) {
			iF := s.fi(i)
			f.Mul(f, iF)
			f.Mul(f, s.add(s.sub(n2f, kf), iF))
			f.Quo(f, s.add(s.sub(n1f, iF), s.f(1)))
			f.Quo(f, s.add(s.sub(kf, iF), s.f(1)))
		}
	}
	return f
}

// exactTest accepts iff ln v <= ln(P(X=ix)/P(X=m)).
func (s *sampler) exactTest(ix *big.Int, v, a, kf, n1f, n2f *big.Float) bool {
	ixf := s.fi(ix)
	bound := s.copy(a)
	bound.Sub(bound, s.afc(ixf))
	bound.Sub(bound, s.afc(s.sub(n1f, ixf)))
	bound.Sub(bound, s.afc(s.sub(kf, ixf)))
	bound.Sub(bound, s.afc(s.add(s.sub(n2f, kf), ixf)))
	return bigfloat.Log(v).Cmp(bound) <= 0
}

// ln(i!) for i = 0..7.
var lnFactSmall = [8]float64{
	0,
	0,
	0.6931471805599453,
	1.791759469228055,
	3.1780538303479458,
	4.787491742782046,
	6.579251212010101,
	8.525161361065415,
}

const lnSqrt2Pi = 0.9189385332046727

// afc approximates ln(x!): a table below 8 (non-integral arguments
// are truncated, as in the published algorithm, where they only shape
// the envelope), Stirling with the 1/360 correction above.
func (s *sampler) afc(x *big.Float) *big.Float {
	if x.Cmp(s.f(8)) < 0 {
		i, _ := x.Int64()
		if i < 0 {
			i = 0
		}
		return s.f(lnFactSmall[i])
	}
	// (x+0.5) ln x - x + ln sqrt(2 pi) + (1/12 - 1/(360 x^2))/x
	out := s.add(x, s.f(0.5))
	out.Mul(out, bigfloat.Log(s.copy(x)))
	out.Sub(out, x)
	out.Add(out, s.f(lnSqrt2Pi))
	corr := s.f(1.0 / 12.0)
	x2 := s.mul(x, x)
	corr.Sub(corr, s.quo(s.f(1.0/360.0), x2))
	out.Add(out, s.quo(corr, x))
	return out
}

// unit draws a uniform in [0, 1) with prec bits of resolution.
func (s *sampler) unit() *big.Float {
	u := s.rng.RandMod(s.span)
	out := new(big.Float).SetPrec(s.prec).SetInt(u)
	out.Quo(out, new(big.Float).SetPrec(s.prec).SetInt(s.span))
	return out
}

// cubic evaluates x(1 + x(-1/2 + x/3)), the 3-term ln(1+x) expansion
// shared by the squeeze bounds.
func (s *sampler) cubic(x *big.Float) *big.Float {
	out := s.quo(x, s.f(3))
	out.Add(out, s.f(-0.5))
	out.Mul(out, x)
	out.Add(out, s.f(1))
	out.Mul(out, x)
	return out
}

// quartic evaluates c x^4, divided by (1+x) when x is negative, the
// remainder bound of the expansion in cubic.
func (s *sampler) quartic(c, x *big.Float) *big.Float {
	x2 := s.mul(x, x)
	out := s.mul(c, s.mul(x2, x2))
	if x.Sign() < 0 {
		out.Quo(out, s.add(s.f(1), x))
	}
	return out
}

func (s *sampler) f(v float64) *big.Float {
	return new(big.Float).SetPrec(s.prec).SetFloat64(v)
}

func (s *sampler) fi(v *big.Int) *big.Float {
	return new(big.Float).SetPrec(s.prec).SetInt(v)
}

func (s *sampler) copy(v *big.Float) *big.Float {
	return new(big.Float).SetPrec(s.prec).Set(v)
}

func (s *sampler) add(a, b *big.Float) *big.Float {
	return new(big.Float).SetPrec(s.prec).Add(a, b)
}

func (s *sampler) sub(a, b *big.Float) *big.Float {
	return new(big.Float).SetPrec(s.prec).Sub(a, b)
}

func (s *sampler) mul(a, b *big.Float) *big.Float {
	return new(big.Float).SetPrec(s.prec).Mul(a, b)
}

func (s *sampler) quo(a, b *big.Float) *big.Float {
	return new(big.Float).SetPrec(s.prec).Quo(a, b)
}
