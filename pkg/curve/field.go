package curve

import (
	"math/big"

	"github.com/cronokirby/safenum"
	"github.com/pkg/errors"
)

// ErrNotInvertible is returned when an inverse is requested for an element
// congruent to zero.
var ErrNotInvertible = errors.New("element is not invertible")

// Field implements arithmetic modulo an odd prime. Every method returns a
// freshly allocated, fully reduced value and never mutates its arguments.
type Field struct {
	P *big.Int

	mod *safenum.Modulus
}

// NewField returns the field of integers modulo p.
func NewField(p *big.Int) *Field {
	m := new(big.Int).Set(p)
	return &Field{
		P:   m,
		mod: safenum.ModulusFromNat(new(safenum.Nat).SetBig(m, uint(m.BitLen()))),
	}
}

// Reduce returns x mod P in [0, P).
func (f *Field) Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, f.P)
}

func (f *Field) Add(x, y *big.Int) *big.Int {
	z := new(big.Int).Add(x, y)
	return z.Mod(z, f.P)
}

func (f *Field) Sub(x, y *big.Int) *big.Int {
	z := new(big.Int).Sub(x, y)
	return z.Mod(z, f.P)
}

func (f *Field) Mul(x, y *big.Int) *big.Int {
	z := new(big.Int).Mul(x, y)
	return z.Mod(z, f.P)
}

func (f *Field) Square(x *big.Int) *big.Int {
	return f.Mul(x, x)
}

// Neg returns -x mod P.
func (f *Field) Neg(x *big.Int) *big.Int {
	z := new(big.Int).Neg(x)
	return z.Mod(z, f.P)
}

// Inv returns x⁻¹ mod P. The inversion runs on safenum's constant-time
// arithmetic since it is applied to secret nonces.
func (f *Field) Inv(x *big.Int) (*big.Int, error) {
	xr := f.Reduce(x)
	if xr.Sign() == 0 {
		return nil, errors.WithStack(ErrNotInvertible)
	}
	nat := new(safenum.Nat).SetBig(xr, uint(f.P.BitLen()))
	return new(safenum.Nat).ModInverse(nat, f.mod).Big(), nil
}

// Sqrt returns a square root of x mod P, or false if x is a non-residue.
func (f *Field) Sqrt(x *big.Int) (*big.Int, bool) {
	root := new(big.Int).ModSqrt(f.Reduce(x), f.P)
	if root == nil {
		return nil, false
	}
	return root, true
}
