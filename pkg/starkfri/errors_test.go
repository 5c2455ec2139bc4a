package starkfri

import (
	"errors"
	"testing"
)

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrLenMismatch, "LenMismatch"},
		{ErrBadSubgroup, "BadSubgroup"},
		{ErrColinearityFailed, "ColinearityFailed"},
		{ErrorCode(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestFriErrorIs(t *testing.T) {
	err := New(ErrDivByZero, "cannot invert zero")
	var target error = &FriError{Code: ErrDivByZero}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match FriErrors with the same code")
	}

	other := New(ErrBadSubgroup, "wrong subgroup")
	if errors.Is(err, other) {
		t.Error("errors.Is should not match FriErrors with different codes")
	}
}

func TestFriErrorWrapUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	wrapped := Wrap(ErrMerklePathFailed, "path check failed", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should see through Unwrap to the cause")
	}
	if wrapped.Error() == "" {
		t.Error("Error() should produce a non-empty message")
	}
}
