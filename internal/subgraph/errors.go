package subgraph

import "errors"

var (
	// ErrInsufficientComplexity means the candidate has fewer than two
	// functional nodes. No model is produced; the caller moves on to its
	// next candidate.
	ErrInsufficientComplexity = errors.New("candidate has too few functional nodes")

	// ErrInvariantViolation means the candidate could not be wired into a
	// closed graph. It points at a bug in candidate selection and must be
	// propagated.
	ErrInvariantViolation = errors.New("subgraph invariant violated")
)
