// Package starkfri provides the public error taxonomy and documentation
// surface for the FRI prover/verifier; the implementation lives in
// internal/starkfri.
package starkfri

import "fmt"

// ErrorCode classifies a FRI failure. All codes are fatal: the core never
// retries or returns a partial result.
type ErrorCode int

const (
	// ErrUnknown is the zero value; never returned deliberately.
	ErrUnknown ErrorCode = iota

	// Input shape.
	ErrLenMismatch
	ErrBadSubgroup
	ErrNotAPowerOfTwo

	// Arithmetic.
	ErrDivByZero
	ErrNonZeroRemainder

	// Structural.
	ErrOmegaOrder
	ErrInterpDisagreement
	ErrInterpDegreeTooHigh

	// Merkle.
	ErrPathMismatch
	ErrRootMismatch

	// FRI.
	ErrLastRootMismatch
	ErrColinearityFailed
	ErrMerklePathFailed

	// Entropy.
	ErrNotEnoughEntropy
	ErrTooManyIndices
)

func (c ErrorCode) String() string {
	switch c {
	case ErrLenMismatch:
		return "LenMismatch"
	case ErrBadSubgroup:
		return "BadSubgroup"
	case ErrNotAPowerOfTwo:
		return "NotAPowerOfTwo"
	case ErrDivByZero:
		return "DivByZero"
	case ErrNonZeroRemainder:
		return "NonZeroRemainder"
	case ErrOmegaOrder:
		return "OmegaOrder"
	case ErrInterpDisagreement:
		return "InterpDisagreement"
	case ErrInterpDegreeTooHigh:
		return "InterpDegreeTooHigh"
	case ErrPathMismatch:
		return "PathMismatch"
	case ErrRootMismatch:
		return "RootMismatch"
	case ErrLastRootMismatch:
		return "LastRootMismatch"
	case ErrColinearityFailed:
		return "ColinearityFailed"
	case ErrMerklePathFailed:
		return "MerklePathFailed"
	case ErrNotEnoughEntropy:
		return "NotEnoughEntropy"
	case ErrTooManyIndices:
		return "TooManyIndices"
	default:
		return "Unknown"
	}
}

// FriError is the tagged error type the core raises for the failures listed
// above; some input checks in the core return plain untagged errors
// instead. It carries a tag
// (Code) callers can switch on, a human-readable Message, and an optional
// wrapped Cause.
type FriError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *FriError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stark-fri: %s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("stark-fri: %s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *FriError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a FriError with the same Code.
func (e *FriError) Is(target error) bool {
	t, ok := target.(*FriError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs a FriError with no wrapped cause.
func New(code ErrorCode, message string) *FriError {
	return &FriError{Code: code, Message: message}
}

// Wrap constructs a FriError wrapping cause.
func Wrap(code ErrorCode, message string, cause error) *FriError {
	return &FriError{Code: code, Message: message, Cause: cause}
}
