package curve

// Points are kept in Jacobian coordinates. For a given (x, y) position on the
// curve, the Jacobian coordinates are (X, Y, Z) where x = X/Z² and y = Y/Z³.
// Scalar multiplication stays inside the transform and only converts back to
// affine form when a caller asks for it.

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrInfinity is returned when an affine coordinate is requested for the point
// at infinity.
var ErrInfinity = errors.New("point at infinity has no affine form")

// Point is a curve point in Jacobian coordinates. Points are values: the
// group operations always build new coordinates and never write through the
// pointers of their operands.
type Point struct {
	X, Y, Z *big.Int
}

// Infinity returns the point at infinity, (1, 1, 0).
func Infinity() Point {
	return Point{X: big.NewInt(1), Y: big.NewInt(1), Z: new(big.Int)}
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return p.Z == nil || p.Z.Sign() == 0
}

// String formats the Jacobian triple the way it is printed in transcripts.
func (p Point) String() string {
	return "(" + p.X.String() + ", " + p.Y.String() + ", " + p.Z.String() + ")"
}

// NewPoint builds a Jacobian point with every coordinate reduced mod P.
func (c *Params) NewPoint(x, y, z *big.Int) Point {
	f := c.Field()
	return Point{X: f.Reduce(x), Y: f.Reduce(y), Z: f.Reduce(z)}
}

// FromAffine lifts an affine point to Jacobian form with Z = 1.
func (c *Params) FromAffine(x, y *big.Int) Point {
	return c.NewPoint(x, y, big.NewInt(1))
}

// Affine converts p back to affine coordinates.
func (c *Params) Affine(p Point) (x, y *big.Int, err error) {
	if p.IsInfinity() {
		return nil, nil, errors.WithStack(ErrInfinity)
	}
	f := c.Field()
	zinv, err := f.Inv(p.Z)
	if err != nil {
		return nil, nil, err
	}
	zinvsq := f.Square(zinv)
	x = f.Mul(p.X, zinvsq)
	y = f.Mul(p.Y, f.Mul(zinvsq, zinv))
	return x, y, nil
}

// AffineX returns X·Z⁻² mod P, the affine x-coordinate of p.
func (c *Params) AffineX(p Point) (*big.Int, error) {
	x, _, err := c.Affine(p)
	return x, err
}

// Equal reports whether p and q are the same group element. The comparison
// cross-multiplies by the Z powers, so no inversion is needed.
func (c *Params) Equal(p, q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	f := c.Field()
	pz2, qz2 := f.Square(p.Z), f.Square(q.Z)
	if f.Mul(p.X, qz2).Cmp(f.Mul(q.X, pz2)) != 0 {
		return false
	}
	pz3, qz3 := f.Mul(pz2, p.Z), f.Mul(qz2, q.Z)
	return f.Mul(p.Y, qz3).Cmp(f.Mul(q.Y, pz3)) == 0
}

// Negate returns -p.
func (c *Params) Negate(p Point) Point {
	if p.IsInfinity() {
		return Infinity()
	}
	return Point{X: new(big.Int).Set(p.X), Y: c.Field().Neg(p.Y), Z: new(big.Int).Set(p.Z)}
}

// Double returns 2·p using the Jacobian doubling formulas for a curve with
// an arbitrary coefficient a.
func (c *Params) Double(p Point) Point {
	f := c.Field()
	if p.IsInfinity() || f.Reduce(p.Y).Sign() == 0 {
		return Infinity()
	}
	x, y, z := p.X, p.Y, p.Z

	ysqr := f.Square(y)
	zsqr := f.Square(z)

	// s = 4·x·y²
	s := f.Mul(big.NewInt(4), f.Mul(x, ysqr))

	// m = 3·x² + a·z⁴
	m := f.Mul(big.NewInt(3), f.Square(x))
	m = f.Add(m, f.Mul(c.A, f.Square(zsqr)))

	// x2 = m² - 2·s
	x2 := f.Sub(f.Square(m), f.Add(s, s))

	// y2 = m·(s - x2) - 8·y⁴
	y2 := f.Mul(m, f.Sub(s, x2))
	y2 = f.Sub(y2, f.Mul(big.NewInt(8), f.Square(ysqr)))

	// z2 = 2·y·z
	z2 := f.Mul(big.NewInt(2), f.Mul(y, z))

	return Point{X: x2, Y: y2, Z: z2}
}

// Add returns p + q. The doubling case is detected from equal normalised X
// and Y and dispatched to Double; p = -q yields infinity.
func (c *Params) Add(p, q Point) Point {
	if p.IsInfinity() {
		return q
	}
	if q.IsInfinity() {
		return p
	}
	f := c.Field()
	x1, y1, z1 := p.X, p.Y, p.Z
	x2, y2, z2 := q.X, q.Y, q.Z

	z1sqr := f.Square(z1)
	z2sqr := f.Square(z2)
	u1 := f.Mul(x1, z2sqr)
	u2 := f.Mul(x2, z1sqr)
	s1 := f.Mul(y1, f.Mul(z2, z2sqr))
	s2 := f.Mul(y2, f.Mul(z1, z1sqr))

	if u1.Cmp(u2) == 0 {
		if s1.Cmp(s2) != 0 {
			return Infinity()
		}
		return c.Double(p)
	}

	h := f.Sub(u2, u1)
	hsqr := f.Square(h)
	hcube := f.Mul(hsqr, h)
	r := f.Sub(s2, s1)
	t := f.Mul(u1, hsqr)

	// x3 = r² - h³ - 2·t
	x3 := f.Sub(f.Sub(f.Square(r), hcube), f.Add(t, t))
	// y3 = r·(t - x3) - s1·h³
	y3 := f.Sub(f.Mul(r, f.Sub(t, x3)), f.Mul(s1, hcube))
	// z3 = h·z1·z2
	z3 := f.Mul(h, f.Mul(z1, z2))

	return Point{X: x3, Y: y3, Z: z3}
}

// Multiply returns k·p by double-and-add over the bits of k, least
// significant bit first. A negative k multiplies -p by |k|.
func (c *Params) Multiply(p Point, k *big.Int) Point {
	if p.IsInfinity() {
		return p
	}
	if k.Sign() < 0 {
		return c.Multiply(c.Negate(p), new(big.Int).Neg(k))
	}
	res := Infinity()
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			res = c.Add(res, p)
		}
		p = c.Double(p)
	}
	return res
}

// ScalarBaseMult returns k·G.
func (c *Params) ScalarBaseMult(k *big.Int) Point {
	return c.Multiply(c.G, k)
}

// Polynomial returns x³ + a·x + b mod P.
func (c *Params) Polynomial(x *big.Int) *big.Int {
	f := c.Field()
	x3 := f.Mul(f.Square(x), x)
	return f.Add(f.Add(x3, f.Mul(c.A, x)), c.B)
}

// IsOnCurve reports whether p satisfies the curve equation. The point at
// infinity is considered on the curve.
func (c *Params) IsOnCurve(p Point) bool {
	if p.IsInfinity() {
		return true
	}
	x, y, err := c.Affine(p)
	if err != nil {
		return false
	}
	return c.Field().Square(y).Cmp(c.Polynomial(x)) == 0
}

// LiftX returns the affine point with the given x-coordinate whose y has the
// requested parity. It reports false when x is not the abscissa of a point.
func (c *Params) LiftX(x *big.Int, odd bool) (Point, bool) {
	if x.Sign() < 0 || x.Cmp(c.P) >= 0 {
		return Point{}, false
	}
	f := c.Field()
	y, ok := f.Sqrt(c.Polynomial(x))
	if !ok {
		return Point{}, false
	}
	if (y.Bit(0) == 1) != odd {
		y = f.Neg(y)
	}
	return c.FromAffine(x, y), true
}
