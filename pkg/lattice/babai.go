package lattice

import (
	"math/big"

	"github.com/pkg/errors"
)

// NearestPlane runs Babai's nearest plane algorithm on the reduced basis and
// returns the lattice vector close to target together with its coefficients
// with respect to the reduced rows.
func (r *Reduction) NearestPlane(target []*big.Int) (vector, coeffs []*big.Int, err error) {
	n := len(r.Basis)
	if len(target) != len(r.Basis[0]) {
		return nil, nil, errors.Wrapf(ErrBadBasis, "target has %d entries, want %d", len(target), len(r.Basis[0]))
	}

	// mu(i, j) = lambda[i][j] / d[j+1] and |b*_i|² = d[i+1] / d[i]
	mu := func(i, j int) *big.Rat {
		return new(big.Rat).SetFrac(r.lambda[i][j], r.d[j+1])
	}
	norm := make([]*big.Rat, n)
	for i := range norm {
		norm[i] = new(big.Rat).SetFrac(r.d[i+1], r.d[i])
	}

	// alpha[i] = <target, b*_i>, from <target, b_i> = alpha[i] + Σ mu(i, j)·alpha[j].
	alpha := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		a := new(big.Rat).SetInt(dot(target, r.Basis[i]))
		for j := 0; j < i; j++ {
			a.Sub(a, new(big.Rat).Mul(mu(i, j), alpha[j]))
		}
		alpha[i] = a
	}

	coeffs = make([]*big.Int, n)
	for i := n - 1; i >= 0; i-- {
		y := new(big.Rat).Quo(alpha[i], norm[i])
		for l := i + 1; l < n; l++ {
			y.Sub(y, new(big.Rat).Mul(new(big.Rat).SetInt(coeffs[l]), mu(l, i)))
		}
		coeffs[i] = roundRat(y)
	}

	vector = make([]*big.Int, len(target))
	for j := range vector {
		vector[j] = new(big.Int)
	}
	tmp := new(big.Int)
	for i, c := range coeffs {
		if c.Sign() == 0 {
			continue
		}
		for j, v := range r.Basis[i] {
			vector[j].Add(vector[j], tmp.Mul(c, v))
		}
	}
	return vector, coeffs, nil
}

// Coordinates maps coefficients on the reduced rows back to coefficients on
// the input rows: x = c·U.
func (r *Reduction) Coordinates(coeffs []*big.Int) []*big.Int {
	x := make([]*big.Int, len(r.Transform[0]))
	for j := range x {
		x[j] = new(big.Int)
	}
	tmp := new(big.Int)
	for i, c := range coeffs {
		if c.Sign() == 0 {
			continue
		}
		for j, u := range r.Transform[i] {
			x[j].Add(x[j], tmp.Mul(c, u))
		}
	}
	return x
}

func roundRat(x *big.Rat) *big.Int {
	return roundDiv(x.Num(), x.Denom())
}
