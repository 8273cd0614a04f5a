package lattice

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

// DefaultDelta is the Lovász constant used when none is given.
var DefaultDelta = big.NewRat(99, 100)

// Reduction is an LLL-reduced basis together with its exact Gram-Schmidt
// data. The Gram-Schmidt coefficients are kept in integral form:
//
//	d[0] = 1, d[i] = Gram determinant of the first i rows
//	lambda[i][j] = d[j+1]·μ(i, j) for j < i
//
// which keeps every intermediate value an integer.
type Reduction struct {
	// Basis holds the reduced rows.
	Basis [][]*big.Int
	// Transform is the unimodular matrix U with Basis = U · input.
	Transform [][]*big.Int
	// Swaps counts the exchange steps performed.
	Swaps int

	d      []*big.Int
	lambda [][]*big.Int
}

// GramDet returns the Gram determinant of the whole basis, det(B·Bᵀ).
func (r *Reduction) GramDet() *big.Int {
	return new(big.Int).Set(r.d[len(r.Basis)])
}

// LLL reduces the rows of basis with the integral variant of the
// Lenstra-Lenstra-Lovász algorithm (Cohen, Algorithm 2.6.7). The rows must be
// linearly independent. The input is not modified.
func LLL(ctx context.Context, basis [][]*big.Int, delta *big.Rat) (*Reduction, error) {
	if len(basis) == 0 {
		return nil, errors.Wrap(ErrBadBasis, "empty basis")
	}
	if delta == nil {
		delta = DefaultDelta
	}
	if delta.Cmp(big.NewRat(1, 4)) <= 0 || delta.Cmp(big.NewRat(1, 1)) > 0 {
		return nil, errors.Wrapf(ErrBadBasis, "delta %s outside (1/4, 1]", delta.RatString())
	}
	width := len(basis[0])
	for i, row := range basis {
		if len(row) != width {
			return nil, errors.Wrapf(ErrBadBasis, "row %d has %d entries, want %d", i, len(row), width)
		}
	}

	n := len(basis)
	r := &Reduction{
		Basis:     cloneMatrix(basis),
		Transform: identity(n),
		d:         make([]*big.Int, n+1),
		lambda:    make([][]*big.Int, n),
	}
	for i := range r.lambda {
		r.lambda[i] = make([]*big.Int, i)
		for j := range r.lambda[i] {
			r.lambda[i][j] = new(big.Int)
		}
	}
	r.d[0] = big.NewInt(1)
	r.d[1] = dot(r.Basis[0], r.Basis[0])
	if r.d[1].Sign() == 0 {
		return nil, errors.Wrap(ErrDependentBasis, "row 0 is zero")
	}

	num, den := delta.Num(), delta.Denom()
	lhs, rhs, tmp := new(big.Int), new(big.Int), new(big.Int)

	k, kmax := 1, 0
	for iter := 0; k < n; iter++ {
		if iter&0xff == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WithStack(err)
			}
		}
		if k > kmax {
			kmax = k
			if err := r.gramSchmidtRow(k); err != nil {
				return nil, err
			}
		}

		r.reduce(k, k-1)

		// Lovász condition: d[k+1]·d[k-1] >= δ·d[k]² - λ², kept integral.
		lam := r.lambda[k][k-1]
		lhs.Mul(r.d[k+1], r.d[k-1])
		lhs.Add(lhs, tmp.Mul(lam, lam))
		lhs.Mul(lhs, den)
		rhs.Mul(r.d[k], r.d[k])
		rhs.Mul(rhs, num)
		if lhs.Cmp(rhs) < 0 {
			r.swap(k, kmax)
			if k > 1 {
				k--
			}
			continue
		}

		for l := k - 2; l >= 0; l-- {
			r.reduce(k, l)
		}
		k++
	}
	return r, nil
}

// gramSchmidtRow computes lambda[k][*] and d[k+1] for a row entering the
// processed prefix for the first time.
func (r *Reduction) gramSchmidtRow(k int) error {
	for j := 0; j <= k; j++ {
		u := dot(r.Basis[k], r.Basis[j])
		for i := 0; i < j; i++ {
			u.Mul(u, r.d[i+1])
			u.Sub(u, new(big.Int).Mul(r.lambda[k][i], r.lambda[j][i]))
			u.Quo(u, r.d[i])
		}
		if j < k {
			r.lambda[k][j] = u
			continue
		}
		if u.Sign() == 0 {
			return errors.Wrapf(ErrDependentBasis, "row %d", k)
		}
		r.d[k+1] = u
	}
	return nil
}

// reduce size-reduces row k against row l.
func (r *Reduction) reduce(k, l int) {
	lam := r.lambda[k][l]
	dl := r.d[l+1]
	twice := new(big.Int).Lsh(lam, 1)
	if twice.CmpAbs(dl) <= 0 {
		return
	}
	q := roundDiv(lam, dl)

	subMultiple(r.Basis[k], r.Basis[l], q)
	subMultiple(r.Transform[k], r.Transform[l], q)

	lam.Sub(lam, new(big.Int).Mul(q, dl))
	for i := 0; i < l; i++ {
		r.lambda[k][i].Sub(r.lambda[k][i], new(big.Int).Mul(q, r.lambda[l][i]))
	}
}

// swap exchanges rows k and k-1 and updates the integral Gram-Schmidt data.
func (r *Reduction) swap(k, kmax int) {
	r.Swaps++
	r.Basis[k], r.Basis[k-1] = r.Basis[k-1], r.Basis[k]
	r.Transform[k], r.Transform[k-1] = r.Transform[k-1], r.Transform[k]
	for j := 0; j < k-1; j++ {
		r.lambda[k][j], r.lambda[k-1][j] = r.lambda[k-1][j], r.lambda[k][j]
	}

	lam := r.lambda[k][k-1]

	// B = (d[k-1]·d[k+1] + λ²) / d[k]
	b := new(big.Int).Mul(r.d[k-1], r.d[k+1])
	b.Add(b, new(big.Int).Mul(lam, lam))
	b.Quo(b, r.d[k])

	for i := k + 1; i <= kmax; i++ {
		t := r.lambda[i][k]

		next := new(big.Int).Mul(r.d[k+1], r.lambda[i][k-1])
		next.Sub(next, new(big.Int).Mul(lam, t))
		next.Quo(next, r.d[k])

		prev := new(big.Int).Mul(b, t)
		prev.Add(prev, new(big.Int).Mul(lam, next))
		prev.Quo(prev, r.d[k+1])

		r.lambda[i][k] = next
		r.lambda[i][k-1] = prev
	}
	r.d[k] = b
}

func dot(a, b []*big.Int) *big.Int {
	sum, tmp := new(big.Int), new(big.Int)
	for i := range a {
		sum.Add(sum, tmp.Mul(a[i], b[i]))
	}
	return sum
}

// subMultiple sets dst = dst - q·src in place.
func subMultiple(dst, src []*big.Int, q *big.Int) {
	tmp := new(big.Int)
	for i := range dst {
		dst[i].Sub(dst[i], tmp.Mul(q, src[i]))
	}
}

// roundDiv returns the integer nearest to a/b for b > 0, rounding halves up.
func roundDiv(a, b *big.Int) *big.Int {
	num := new(big.Int).Lsh(a, 1)
	num.Add(num, b)
	den := new(big.Int).Lsh(b, 1)
	return num.Div(num, den)
}

func cloneMatrix(m [][]*big.Int) [][]*big.Int {
	out := make([][]*big.Int, len(m))
	for i, row := range m {
		out[i] = make([]*big.Int, len(row))
		for j, v := range row {
			out[i][j] = new(big.Int).Set(v)
		}
	}
	return out
}

func identity(n int) [][]*big.Int {
	out := make([][]*big.Int, n)
	for i := range out {
		out[i] = make([]*big.Int, n)
		for j := range out[i] {
			out[i][j] = new(big.Int)
		}
		out[i][i].SetInt64(1)
	}
	return out
}
