package biasednonce

import "github.com/pkg/errors"

// Every error below aborts a run. Nothing in this package retries with
// different parameters.
var (
	// ErrParse reports a malformed transcript record.
	ErrParse = errors.New("malformed transcript")
	// ErrArithmeticPrecondition reports an inverse requested of an element
	// congruent to zero (r, s or k mod n).
	ErrArithmeticPrecondition = errors.New("arithmetic precondition violated")
	// ErrSolverFailure reports that no bounded integer solution was found.
	ErrSolverFailure = errors.New("no bounded solution found")
	// ErrVerificationMismatch reports a recovered key that fails an
	// independent check.
	ErrVerificationMismatch = errors.New("verification mismatch")
	// ErrDecryption reports bad padding after decryption, usually a wrong key.
	ErrDecryption = errors.New("decryption failed")
)
