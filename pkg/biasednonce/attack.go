package biasednonce

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
	"github.com/mahdiidarabi/ecdsa-biased/pkg/lattice"
)

// Attack recovers a private key from two signatures with biased nonces.
type Attack struct {
	curve  *curve.Params
	nonce  NonceModel
	config AttackConfig
	solver lattice.Solver
	logger Logger

	// customNonce is set once WithNonceModel replaces the per-curve default.
	customNonce bool
}

// NewAttack creates an attack on c with the default nonce model and the
// built-in box solver.
func NewAttack(c *curve.Params) *Attack {
	a := &Attack{
		curve: c,
		nonce: DefaultNonceModel(c.OrderBits()),
	}
	return a.WithConfig(DefaultAttackConfig())
}

// WithConfig sets the solver configuration. It replaces any solver set
// earlier with a box solver built from cfg.
func (a *Attack) WithConfig(cfg AttackConfig) *Attack {
	if cfg.DigitMax <= 0 || cfg.DigitMax > 255 {
		cfg.DigitMax = 255
	}
	a.config = cfg
	a.solver = &lattice.BoxSolver{Delta: cfg.Delta, Weight: cfg.EqualityWeight}
	return a
}

// WithNonceModel sets the generator the signatures are assumed to come from.
func (a *Attack) WithNonceModel(m NonceModel) *Attack {
	a.nonce = m
	a.customNonce = true
	return a
}

// WithSolver sets a custom bounded solver.
func (a *Attack) WithSolver(s lattice.Solver) *Attack {
	a.solver = s
	return a
}

// WithLogger sets the logger used for progress and diagnostics.
func (a *Attack) WithLogger(l Logger) *Attack {
	a.logger = l
	return a
}

// onCurve returns a copy of the attack targeting c. The solver, config and
// logger carry over, as does a nonce model set through WithNonceModel; the
// default model is re-derived from the bit length of c's order.
func (a *Attack) onCurve(c *curve.Params) *Attack {
	b := *a
	b.curve = c
	if !b.customNonce {
		b.nonce = DefaultNonceModel(c.OrderBits())
	}
	return &b
}

// Recover runs the attack on two signatures made with the same key.
//
// Eliminating d from s_i·k_i = z_i + r_i·d gives
//
//	s1·r1⁻¹·k1 - s2·r2⁻¹·k2 ≡ z1·r1⁻¹ - z2·r2⁻¹  (mod n)
//
// and each k_i is A·Σ B_i[j]·Base^j. The unknown bytes and the multiple of n
// become the rows of a square lattice whose first column must hit the
// right-hand side exactly while every byte column stays in [0, DigitMax].
//
// Returns:
//   - The key and both nonces if the solver finds a point and both signing
//     equations give the same d.
//   - ErrSolverFailure if no bounded point is found or it decodes to
//     out-of-range bytes; ErrVerificationMismatch if the two keys differ.
func (a *Attack) Recover(ctx context.Context, sig1, sig2 *Signature) (*AttackResult, error) {
	return a.recoverWith(ctx, sig1, sig2, orNop(a.logger))
}

func (a *Attack) recoverWith(ctx context.Context, sig1, sig2 *Signature, log Logger) (*AttackResult, error) {
	if err := a.nonce.Validate(); err != nil {
		return nil, err
	}
	for _, sig := range []*Signature{sig1, sig2} {
		if sig == nil || sig.R == nil || sig.S == nil || sig.Z == nil {
			return nil, errors.Wrap(ErrParse, "signature is missing r, s or z")
		}
	}
	n := a.curve.Scalars()
	limbs := a.nonce.Limbs()

	r1inv, err := n.Inv(sig1.R)
	if err != nil {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "r1 is not invertible")
	}
	r2inv, err := n.Inv(sig2.R)
	if err != nil {
		return nil, errors.Wrap(ErrArithmeticPrecondition, "r2 is not invertible")
	}

	basis := a.buildBasis(sig1, sig2, r1inv, r2inv)
	target := n.Sub(n.Mul(sig1.Z, r1inv), n.Mul(sig2.Z, r2inv))

	dim := len(basis)
	lb := make([]*big.Int, dim)
	ub := make([]*big.Int, dim)
	lb[0], ub[0] = target, target
	for i := 1; i < dim; i++ {
		lb[i] = new(big.Int)
		ub[i] = big.NewInt(a.config.DigitMax)
	}

	log.Info("Solving %d-dimensional lattice (%d bytes per nonce)", dim, limbs)
	sol, err := a.solver.Solve(ctx, basis, lb, ub)
	if err != nil {
		return nil, &solverError{err: err}
	}
	log.Debug("fin = %v", sol.Fin)
	if sol.ExpectedSolutions != nil {
		log.Debug("Expected solutions in box: %s, LLL swaps: %d", sol.ExpectedSolutions, sol.Swaps)
	}

	if len(sol.Fin) != dim {
		return nil, errors.Wrapf(ErrSolverFailure, "solver returned %d unknowns, want %d", len(sol.Fin), dim)
	}
	digits1, err := decodeDigits(sol.Fin[:limbs])
	if err != nil {
		return nil, err
	}
	digits2, err := decodeDigits(sol.Fin[limbs : 2*limbs])
	if err != nil {
		return nil, err
	}
	k1 := a.nonce.Compose(digits1)
	k2 := a.nonce.Compose(digits2)

	d1 := deriveKey(n, sig1, k1, r1inv)
	d2 := deriveKey(n, sig2, k2, r2inv)
	log.Info("d from first signature:  %s", d1)
	log.Info("d from second signature: %s", d2)
	if d1.Cmp(d2) != 0 {
		return nil, errors.Wrap(ErrVerificationMismatch, "signing equations disagree on the private key")
	}

	return &AttackResult{
		PrivateKey:        d1,
		K1:                k1,
		K2:                k2,
		D1:                d1,
		D2:                d2,
		Digits1:           digits1,
		Digits2:           digits2,
		ExpectedSolutions: sol.ExpectedSolutions,
		Swaps:             sol.Swaps,
	}, nil
}

// buildBasis returns the rows (c_j, e_j) for the 2·limbs nonce bytes and
// (-n, 0, ..., 0) for the multiple of n. Coefficients are reduced mod n.
func (a *Attack) buildBasis(sig1, sig2 *Signature, r1inv, r2inv *big.Int) [][]*big.Int {
	n := a.curve.Scalars()
	limbs := a.nonce.Limbs()
	dim := 2*limbs + 1

	// c1 = s1·A·r1⁻¹, c2 = -s2·A·r2⁻¹, then times Base^j per limb
	c1 := n.Mul(n.Mul(sig1.S, a.nonce.A), r1inv)
	c2 := n.Neg(n.Mul(n.Mul(sig2.S, a.nonce.A), r2inv))

	basis := make([][]*big.Int, dim)
	for i := range basis {
		basis[i] = make([]*big.Int, dim)
		for j := range basis[i] {
			basis[i][j] = new(big.Int)
		}
	}
	pow := big.NewInt(1)
	for j := 0; j < limbs; j++ {
		basis[j][0] = n.Mul(c1, pow)
		basis[j][j+1].SetInt64(1)
		basis[limbs+j][0] = n.Mul(c2, pow)
		basis[limbs+j][limbs+j+1].SetInt64(1)
		pow = n.Mul(pow, a.nonce.Base)
	}
	basis[dim-1][0].Neg(a.curve.N)
	return basis
}

func decodeDigits(fin []*big.Int) ([]byte, error) {
	digits := make([]byte, len(fin))
	for i, v := range fin {
		if v.Sign() < 0 || v.Cmp(big.NewInt(255)) > 0 {
			return nil, errors.Wrapf(ErrSolverFailure, "unknown %d = %s is not a byte", i, v)
		}
		digits[i] = byte(v.Int64())
	}
	return digits, nil
}

// deriveKey solves s·k = z + r·d for d.
func deriveKey(n *curve.Field, sig *Signature, k, rinv *big.Int) *big.Int {
	return n.Mul(n.Sub(n.Mul(sig.S, k), sig.Z), rinv)
}

// solverError reports a solver failure. It matches ErrSolverFailure and
// unwraps to the solver's own error.
type solverError struct {
	err error
}

func (e *solverError) Error() string {
	return errors.WithMessage(e.err, ErrSolverFailure.Error()).Error()
}

func (e *solverError) Is(target error) bool {
	return target == ErrSolverFailure
}

func (e *solverError) Unwrap() error {
	return e.err
}
