// Package curve implements short-Weierstrass elliptic curve arithmetic
// y² = x³ + a·x + b over a prime field, on Jacobian coordinates and
// arbitrary-precision integers.
//
// Curve parameters are immutable values passed explicitly to every
// operation, so the same code runs on the 512-bit challenge curve and on
// alternate curves such as secp256k1.
//
// The arithmetic is not constant time and performs no point validation:
// callers are responsible for supplying points that lie on the curve.
package curve

import (
	"math/big"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Params describes a curve y² = x³ + A·x + B over GF(P) with a base point G
// of prime order N.
type Params struct {
	Name string
	P    *big.Int // the order of the underlying field
	A    *big.Int // the linear coefficient of the curve equation
	B    *big.Int // the constant of the curve equation
	G    Point    // the base point, possibly with Z != 1
	N    *big.Int // the order of the base point

	field   *Field
	scalars *Field
}

// NewParams builds curve parameters without validating them. The returned
// value is shared read-only and must not be modified.
func NewParams(name string, p, a, b, n *big.Int, g Point) *Params {
	c := &Params{Name: name, P: p, A: a, B: b, N: n, field: NewField(p), scalars: NewField(n)}
	c.G = c.NewPoint(g.X, g.Y, g.Z)
	return c
}

// Field returns arithmetic modulo P.
func (c *Params) Field() *Field {
	return c.field
}

// Scalars returns arithmetic modulo the group order N.
func (c *Params) Scalars() *Field {
	return c.scalars
}

// OrderBits returns the bit length of N.
func (c *Params) OrderBits() int {
	return c.N.BitLen()
}

var (
	initonce sync.Once
	h1       *Params
	k256     *Params
)

func initAll() {
	initH1()
	initSecp256k1()
}

func mustInt(s string) *big.Int {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("curve: bad constant " + s)
	}
	return x
}

func initH1() {
	h1 = NewParams("h1-512",
		mustInt("8948962207650232551656602815159153422162609644098354511344597187200057010413552439917934304191956942765446530386427345937963894309923928536070534607816947"),
		mustInt("6294860557973063227666421306476379324074715770622746227136910445450301914281276098027990968407983962691151853678563877834221834027439718238065725844264138"),
		mustInt("3245789008328967059274849584342077916531909009637501918328323668736179176583263496463525128488282611559800773506973771797764811498834995234341530862286627"),
		mustInt("8948962207650232551656602815159153422162609644098354511344597187200057010413418528378981730643524959857451398370029280583094215613882043973354392115544169"),
		Point{
			X: mustInt("5139617820728399941653175323358137352238277428061991823713659546881441331696699723004749024403291797641521696406798421624364096550661311227399430098134141"),
			Y: mustInt("1798860115416690485862271986832828064808333512613833729548071279524320966991708554765227095605106785724406691559310536469721469398449016850588110200884962"),
			Z: mustInt("5042518522433577951395875294780962682755843408950010956510838422057522452845550974098236475624683438351211176927595173916071040272153903968536756498306512"),
		},
	)
}

func initSecp256k1() {
	p := secp256k1.S256().Params()
	k256 = NewParams("secp256k1", p.P, new(big.Int), p.B, p.N,
		Point{X: p.Gx, Y: p.Gy, Z: big.NewInt(1)})
}

// H1 returns the 512-bit curve whose base point is given in Jacobian form
// with Z != 1. Multiple invocations return the same value.
func H1() *Params {
	initonce.Do(initAll)
	return h1
}

// Secp256k1 returns secp256k1 (a = 0) with the parameters published by the
// decred implementation.
func Secp256k1() *Params {
	initonce.Do(initAll)
	return k256
}
