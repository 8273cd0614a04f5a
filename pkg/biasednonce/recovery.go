package biasednonce

import (
	"context"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
)

// RecoverPublicKeys returns every public key Q for which (r, s) is a valid
// signature of the hash z.
//
// Each x = r + j·n below P that lifts to a curve point R contributes
// Q = r⁻¹·(s·R - z·G) for both parities of R's y-coordinate, even first.
// Callers pick the right candidate with an independent Verify.
func RecoverPublicKeys(c *curve.Params, r, s, z *big.Int) ([]curve.Point, error) {
	if !inScalarRange(c, r) || !inScalarRange(c, s) {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "r and s must lie in [1, n)")
	}
	n := c.Scalars()
	rinv, err := n.Inv(r)
	if err != nil {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "r is not invertible")
	}
	zG := c.ScalarBaseMult(n.Neg(z))

	var candidates []curve.Point
	for x := new(big.Int).Set(r); x.Cmp(c.P) < 0; x = new(big.Int).Add(x, c.N) {
		for _, odd := range []bool{false, true} {
			pt, ok := c.LiftX(x, odd)
			if !ok {
				break
			}
			q := c.Multiply(c.Add(c.Multiply(pt, s), zG), rinv)
			if q.IsInfinity() {
				continue
			}
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil, errors.Wrapf(ErrVerificationMismatch, "no curve point has x-coordinate %s + j·n", r)
	}
	return candidates, nil
}

// SelectPublicKey returns the first candidate, in order, that verifies every
// signature. Candidates are checked concurrently.
func SelectPublicKey(ctx context.Context, c *curve.Params, candidates []curve.Point, sigs ...*Signature) (curve.Point, int, error) {
	best := atomic.NewInt32(-1)
	g, ctx := errgroup.WithContext(ctx)
	for i := range candidates {
		i := i // per-iteration copy (go1.22 loopvar semantics under go 1.21)
		g.Go(func() error {
			for _, sig := range sigs {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !VerifyHash(c, sig.Z, candidates[i], sig.R, sig.S) {
					return nil
				}
			}
			for {
				cur := best.Load()
				if cur >= 0 && cur <= int32(i) {
					return nil
				}
				if best.CAS(cur, int32(i)) {
					return nil
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return curve.Point{}, -1, errors.WithStack(err)
	}
	idx := int(best.Load())
	if idx < 0 {
		return curve.Point{}, -1, errors.Wrapf(ErrVerificationMismatch, "none of %d candidates verifies %d signatures", len(candidates), len(sigs))
	}
	return candidates[idx], idx, nil
}

// VerifyPrivateKey reports whether d·G equals q. On secp256k1 the product is
// also checked against the decred implementation.
func VerifyPrivateKey(c *curve.Params, d *big.Int, q curve.Point) (bool, error) {
	if !inScalarRange(c, d) {
		return false, errors.New("private key out of valid range")
	}
	if !c.Equal(c.ScalarBaseMult(d), q) {
		return false, nil
	}
	if c != curve.Secp256k1() {
		return true, nil
	}

	x, y, err := c.Affine(q)
	if err != nil {
		return false, err
	}
	privKeyBytes := d.FillBytes(make([]byte, 32))
	pubKey := secp256k1.PrivKeyFromBytes(privKeyBytes).PubKey()
	return pubKey.X().Cmp(x) == 0 && pubKey.Y().Cmp(y) == 0, nil
}
