package biasednonce

import (
	"math/big"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
)

// Signature represents an ECDSA signature with its message hash.
// This is the core type used throughout the package.
type Signature struct {
	R *big.Int // r component of the signature
	S *big.Int // s component of the signature
	Z *big.Int // Message hash after HashTransform
	K *big.Int // Ephemeral nonce; only set for signatures produced locally
}

// AttackResult contains the output of a successful nonce-bias attack.
type AttackResult struct {
	PrivateKey *big.Int // Recovered private key, agreed on by both signatures
	K1         *big.Int // Reconstructed nonce of the first signature
	K2         *big.Int // Reconstructed nonce of the second signature
	D1         *big.Int // Key derived from the first signing equation
	D2         *big.Int // Key derived from the second signing equation
	Digits1    []byte   // Nonce bytes of the first signature, low limb first
	Digits2    []byte   // Nonce bytes of the second signature, low limb first

	ExpectedSolutions *big.Int // Solver estimate of the number of box points
	Swaps             int      // LLL exchange steps
}

// RecoveryResult contains the result of a full transcript run.
type RecoveryResult struct {
	PrivateKey *big.Int    // Recovered private key d
	PublicKey  curve.Point // Verified public key Qb = d·G
	PeerKey    curve.Point // Verified peer public key Qa
	SharedX    *big.Int    // Affine x of d·Qa, the flag key input
	Plaintext  []byte      // Decrypted flag
	Attack     *AttackResult
	Verified   bool // Whether d·G matched the recovered public key
}
