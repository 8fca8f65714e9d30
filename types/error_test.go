package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithHTTPStatus(502).
		WithRetryable(true).
		WithProvider("jimeng")

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestIsErrorCode_WrappedChain(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrUnknownPreset, "no such preset")
	wrapped := fmt.Errorf("resolve: %w", inner)

	if !IsErrorCode(wrapped, ErrUnknownPreset) {
		t.Fatalf("expected UNKNOWN_PRESET through wrap chain")
	}
	if IsErrorCode(wrapped, ErrInvalidDimension) {
		t.Fatalf("unexpected INVALID_DIMENSION match")
	}
	if IsErrorCode(errors.New("plain"), ErrUnknownPreset) {
		t.Fatalf("plain error must not match")
	}
}
