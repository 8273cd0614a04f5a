// Package biasednonce provides tools for recovering ECDSA private keys from
// two signatures whose nonces come from a biased generator.
//
// The generator draws nbits/8 random bytes B and returns
//
//	k = a · Σ B[i]·b^i  mod 2^nbits
//
// with small public constants a and b. With b = 2^32 only nbits/32 of the
// bytes survive the reduction, so each nonce has a few hundred bits of
// entropy spread over a handful of byte-sized unknowns. Eliminating the
// private key from two signing equations leaves one linear equation mod n in
// those bytes, which a bounded lattice solver recovers.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/ecdsa-biased/pkg/biasednonce"
//
//	// Run the whole scenario on a transcript
//	client := biasednonce.NewClient()
//
//	result, err := client.Run(ctx, "output.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Recovered key: %s\n", result.PrivateKey.Text(16))
//	fmt.Printf("Flag: %s\n", result.Plaintext)
//
// # Attacking Signatures Directly
//
//	attack := biasednonce.NewAttack(curve.H1()).WithLogger(biasednonce.StdLogger(os.Stdout))
//
//	sig1 := &biasednonce.Signature{R: r1, S: s1, Z: biasednonce.HashMessage(curve.H1(), msg1)}
//	sig2 := &biasednonce.Signature{R: r2, S: s2, Z: biasednonce.HashMessage(curve.H1(), msg2)}
//
//	res, err := attack.Recover(ctx, sig1, sig2)
//
// # Custom Solvers
//
// Any implementation of lattice.Solver can replace the built-in box solver:
//
//	attack := biasednonce.NewAttack(curve.H1()).WithSolver(mySolver)
package biasednonce
