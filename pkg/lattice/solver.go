// Package lattice solves bounded integer linear systems through lattice
// reduction.
//
// Given a matrix M with one row per unknown and one column per constraint,
// and per-column bounds lb ≤ x·M ≤ ub, BoxSolver looks for an integer vector
// x meeting every bound. Columns are weighted so that each bound interval has
// roughly the same width (equalities get a large weight), the weighted rows
// are LLL-reduced, and Babai's nearest plane algorithm rounds the centre of
// the box to a nearby lattice point.
//
// The method is heuristic: it succeeds when the box contains a lattice point
// that is much closer to the centre than the reduced basis is long, which is
// the regime of nonce-bias attacks.
package lattice

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrBadBasis       = errors.New("malformed basis")
	ErrDependentBasis = errors.New("basis rows are linearly dependent")
	ErrBadBounds      = errors.New("malformed bounds")
	ErrNoSolution     = errors.New("no lattice point within bounds")
)

// Solution is the output of a bounded solve.
type Solution struct {
	// Result is the lattice point found, in weighted coordinates.
	Result []*big.Int
	// Weights holds the scaling applied to each constraint column.
	Weights []*big.Int
	// Fin holds the integer unknowns x with x·M = Result / Weights.
	Fin []*big.Int
	// ExpectedSolutions estimates how many integer points the box holds;
	// nil when M is not square.
	ExpectedSolutions *big.Int
	// Swaps is the number of exchange steps spent in LLL.
	Swaps int
}

// Solver finds integer vectors satisfying box constraints on a linear map.
type Solver interface {
	Solve(ctx context.Context, basis [][]*big.Int, lb, ub []*big.Int) (*Solution, error)
}

// BoxSolver implements Solver with column weighting, LLL and Babai rounding.
type BoxSolver struct {
	// Delta is the Lovász constant; nil means DefaultDelta.
	Delta *big.Rat
	// Weight scales equality columns; nil means columns × max |entry|.
	Weight *big.Int
}

// NewBoxSolver returns a solver with default settings.
func NewBoxSolver() *BoxSolver {
	return &BoxSolver{}
}

// Solve implements Solver.
func (s *BoxSolver) Solve(ctx context.Context, basis [][]*big.Int, lb, ub []*big.Int) (*Solution, error) {
	numVar := len(basis)
	if numVar == 0 {
		return nil, errors.Wrap(ErrBadBasis, "empty basis")
	}
	numIneq := len(basis[0])
	if numVar > numIneq {
		return nil, errors.Wrapf(ErrDependentBasis, "%d rows in dimension %d", numVar, numIneq)
	}
	if len(lb) != numIneq || len(ub) != numIneq {
		return nil, errors.Wrapf(ErrBadBounds, "got %d lower and %d upper bounds for %d columns", len(lb), len(ub), numIneq)
	}
	maxDiff := new(big.Int)
	for i := range lb {
		diff := new(big.Int).Sub(ub[i], lb[i])
		if diff.Sign() < 0 {
			return nil, errors.Wrapf(ErrBadBounds, "lower bound exceeds upper bound at column %d", i)
		}
		if diff.Cmp(maxDiff) > 0 {
			maxDiff = diff
		}
	}

	weight := s.Weight
	if weight == nil {
		maxElement := new(big.Int)
		for _, row := range basis {
			for _, v := range row {
				if v.CmpAbs(maxElement) > 0 {
					maxElement.Abs(v)
				}
			}
		}
		weight = new(big.Int).Mul(big.NewInt(int64(numIneq)), maxElement)
		if weight.Sign() == 0 {
			weight.SetInt64(1)
		}
	}

	weights := make([]*big.Int, numIneq)
	for i := range weights {
		diff := new(big.Int).Sub(ub[i], lb[i])
		if diff.Sign() == 0 {
			weights[i] = new(big.Int).Set(weight)
		} else {
			weights[i] = new(big.Int).Quo(maxDiff, diff)
		}
	}

	scaled := cloneMatrix(basis)
	for _, row := range scaled {
		for i, v := range row {
			v.Mul(v, weights[i])
		}
	}
	lo := make([]*big.Int, numIneq)
	hi := make([]*big.Int, numIneq)
	target := make([]*big.Int, numIneq)
	for i := range target {
		lo[i] = new(big.Int).Mul(lb[i], weights[i])
		hi[i] = new(big.Int).Mul(ub[i], weights[i])
		target[i] = new(big.Int).Add(lo[i], hi[i])
		target[i].Div(target[i], big.NewInt(2))
	}

	red, err := LLL(ctx, scaled, s.Delta)
	if err != nil {
		return nil, err
	}
	result, coeffs, err := red.NearestPlane(target)
	if err != nil {
		return nil, err
	}
	for i, v := range result {
		if v.Cmp(lo[i]) < 0 || v.Cmp(hi[i]) > 0 {
			return nil, errors.Wrapf(ErrNoSolution, "column %d out of bounds after rounding", i)
		}
	}

	sol := &Solution{
		Result:  result,
		Weights: weights,
		Fin:     red.Coordinates(coeffs),
		Swaps:   red.Swaps,
	}
	if numVar == numIneq {
		sol.ExpectedSolutions = expectedSolutions(red, weights, lb, ub)
	}
	return sol, nil
}

// expectedSolutions estimates the number of lattice points in the box as
// its volume over the (unweighted) determinant, plus one.
func expectedSolutions(red *Reduction, weights, lb, ub []*big.Int) *big.Int {
	det := new(big.Int).Sqrt(red.GramDet())
	for _, w := range weights {
		det.Quo(det, w)
	}
	volume := big.NewInt(1)
	for i := range lb {
		diff := new(big.Int).Sub(ub[i], lb[i])
		if diff.Sign() == 0 {
			continue
		}
		volume.Mul(volume, diff.Add(diff, big.NewInt(1)))
	}
	if det.Sign() == 0 {
		return volume
	}
	volume.Quo(volume, det)
	return volume.Add(volume, big.NewInt(1))
}
