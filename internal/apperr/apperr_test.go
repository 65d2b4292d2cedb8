package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("updating asset: %w", Validation("retired asset cannot be moved"))

	if KindOf(err) != KindValidation {
		t.Errorf("expected validation, got %q", KindOf(err))
	}
	if !Is(err, KindValidation) {
		t.Error("expected Is to match validation")
	}
	if Is(err, KindNotFound) {
		t.Error("did not expect not_found")
	}
	if got := Message(err, "fallback"); got != "retired asset cannot be moved" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestPlainError(t *testing.T) {
	err := errors.New("disk full")
	if KindOf(err) != "" {
		t.Errorf("expected empty kind, got %q", KindOf(err))
	}
	if got := Message(err, "internal error"); got != "internal error" {
		t.Errorf("expected fallback, got %q", got)
	}
	if Is(nil, KindConflict) {
		t.Error("nil error should not match")
	}
}

func TestConflictUnwrap(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	err := Conflict("serial number already exists", cause)
	if !errors.Is(err, cause) {
		t.Error("expected conflict to unwrap to cause")
	}
	if err.Error() != "serial number already exists: UNIQUE constraint failed" {
		t.Errorf("unexpected text %q", err.Error())
	}
}
