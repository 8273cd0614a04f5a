package biasednonce

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

const (
	// DefaultNonceMultiplier is a_const, 0x01010101.
	DefaultNonceMultiplier = 16843009
	// DefaultNonceBaseBits is log2 of b_const = 2^32.
	DefaultNonceBaseBits = 32
)

// NonceModel describes the biased generator
//
//	k = A · Σ B[i]·Base^i  mod 2^Bits
//
// over Bits/8 random bytes B.
type NonceModel struct {
	A    *big.Int // Multiplier applied to the byte expansion
	Base *big.Int // Limb base, a power of two
	Bits int      // Nonce width, usually the bit length of n
}

// DefaultNonceModel returns the generator with a = 16843009 and b = 2^32.
func DefaultNonceModel(bits int) NonceModel {
	return NonceModel{
		A:    big.NewInt(DefaultNonceMultiplier),
		Base: new(big.Int).Lsh(big.NewInt(1), DefaultNonceBaseBits),
		Bits: bits,
	}
}

// Validate checks that the model has the shape the attack relies on: every
// byte lands in its own limb without carries, and whole limbs fill Bits.
func (m NonceModel) Validate() error {
	if m.A == nil || m.Base == nil {
		return errors.New("nonce model: missing constants")
	}
	if m.Bits <= 0 || m.Bits%8 != 0 {
		return errors.Errorf("nonce model: width %d is not a positive multiple of 8", m.Bits)
	}
	if m.A.Sign() <= 0 {
		return errors.New("nonce model: multiplier must be positive")
	}
	limbBits := m.Base.BitLen() - 1
	if m.Base.Sign() <= 0 || limbBits < 8 || m.Base.TrailingZeroBits() != uint(limbBits) {
		return errors.Errorf("nonce model: base %s is not a power of two of at least 2^8", m.Base)
	}
	if m.Bits%limbBits != 0 {
		return errors.Errorf("nonce model: width %d is not a multiple of the limb width %d", m.Bits, limbBits)
	}
	if new(big.Int).Mul(m.A, big.NewInt(255)).Cmp(m.Base) >= 0 {
		return errors.New("nonce model: multiplier overflows a limb")
	}
	return nil
}

// Limbs returns how many bytes survive the reduction mod 2^Bits.
func (m NonceModel) Limbs() int {
	return m.Bits / (m.Base.BitLen() - 1)
}

// Digits draws the Bits/8 random bytes of a nonce.
func (m NonceModel) Digits(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	digits := make([]byte, m.Bits/8)
	if _, err := io.ReadFull(r, digits); err != nil {
		return nil, errors.Wrap(err, "failed to read nonce bytes")
	}
	return digits, nil
}

// Compose evaluates A · Σ digits[i]·Base^i mod 2^Bits.
func (m NonceModel) Compose(digits []byte) *big.Int {
	k := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		k.Mul(k, m.Base)
		k.Add(k, big.NewInt(int64(digits[i])))
	}
	k.Mul(k, m.A)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(m.Bits))
	mask.Sub(mask, big.NewInt(1))
	return k.And(k, mask)
}

// Generate returns a fresh biased nonce.
func (m NonceModel) Generate(r io.Reader) (*big.Int, error) {
	digits, err := m.Digits(r)
	if err != nil {
		return nil, err
	}
	return m.Compose(digits), nil
}
