package biasednonce

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
)

// Signer produces ECDSA signatures with nonces drawn from a biased model.
type Signer struct {
	curve *curve.Params
	nonce NonceModel
	rand  io.Reader
}

// NewSigner creates a signer on c using the default nonce model and
// crypto/rand.
func NewSigner(c *curve.Params) *Signer {
	return &Signer{
		curve: c,
		nonce: DefaultNonceModel(c.OrderBits()),
	}
}

// WithNonceModel sets the nonce generator.
func (s *Signer) WithNonceModel(m NonceModel) *Signer {
	s.nonce = m
	return s
}

// WithRand sets the byte source of the nonce generator. Tests inject a
// deterministic reader here.
func (s *Signer) WithRand(r io.Reader) *Signer {
	s.rand = r
	return s
}

// Sign signs message with the private key d.
//
// Returns:
//   - The signature, including the hash z and the nonce k used.
//   - ErrArithmeticPrecondition if k, r or s is zero mod n.
func (s *Signer) Sign(message []byte, d *big.Int) (*Signature, error) {
	c := s.curve
	n := c.Scalars()

	z := HashMessage(c, message)
	k, err := s.nonce.Generate(s.rand)
	if err != nil {
		return nil, err
	}
	kinv, err := n.Inv(k)
	if err != nil {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "nonce is zero mod n")
	}

	x, err := c.AffineX(c.ScalarBaseMult(k))
	if err != nil {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "nonce point is at infinity")
	}
	r := n.Reduce(x)
	if r.Sign() == 0 {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "r is zero")
	}

	// s = k⁻¹·(z + r·d) mod n
	sig := n.Mul(kinv, n.Add(z, n.Mul(r, d)))
	if sig.Sign() == 0 {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "s is zero")
	}
	return &Signature{R: r, S: sig, Z: z, K: k}, nil
}

// Verify checks (r, s) on message against the public key q.
func Verify(c *curve.Params, message []byte, q curve.Point, r, s *big.Int) bool {
	return VerifyHash(c, HashMessage(c, message), q, r, s)
}

// VerifyHash checks (r, s) against an already transformed message hash z.
func VerifyHash(c *curve.Params, z *big.Int, q curve.Point, r, s *big.Int) bool {
	if !inScalarRange(c, r) || !inScalarRange(c, s) {
		return false
	}
	n := c.Scalars()
	sinv, err := n.Inv(s)
	if err != nil {
		return false
	}
	u1 := n.Mul(z, sinv)
	u2 := n.Mul(r, sinv)
	p := c.Add(c.ScalarBaseMult(u1), c.Multiply(q, u2))
	x, err := c.AffineX(p)
	if err != nil {
		return false
	}
	return n.Reduce(x).Cmp(r) == 0
}

func inScalarRange(c *curve.Params, v *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(c.N) < 0
}
