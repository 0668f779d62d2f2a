package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindMatching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFoundError("call not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("not found must not match conflict")
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("KindOf = %q", KindOf(err))
	}
	if Message(err) != "call not found" {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestMessageFallback(t *testing.T) {
	err := errors.New("db exploded")
	if KindOf(err) != "" {
		t.Fatalf("plain error has kind %q", KindOf(err))
	}
	if Message(err) != "internal error" {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Kind: KindConflict, Msg: "call is accepted", Err: ErrInvalidTransition}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatal("expected wrapped ErrInvalidTransition")
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected conflict kind")
	}
}
