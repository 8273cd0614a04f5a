package biasednonce

import (
	"crypto/sha512"
	"math/big"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
)

// HashTransform interprets digest as a big-endian integer and drops its low
// bits until it is no longer than the group order. A digest that is already
// short enough is returned unchanged.
func HashTransform(digest []byte, orderBits int) *big.Int {
	z := new(big.Int).SetBytes(digest)
	if shift := len(digest)*8 - orderBits; shift > 0 {
		z.Rsh(z, uint(shift))
	}
	return z
}

// HashMessage hashes a message with SHA-512 and truncates it to the bit
// length of the curve order.
func HashMessage(c *curve.Params, message []byte) *big.Int {
	h := sha512.Sum512(message)
	return HashTransform(h[:], c.OrderBits())
}
