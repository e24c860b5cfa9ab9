package dErrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "roster not found")
		if !HasCode(err, CodeNotFound) {
			t.Fatalf("expected CodeNotFound to match")
		}
		if HasCode(err, CodeConflict) {
			t.Fatalf("did not expect CodeConflict to match")
		}
	})

	t.Run("matches code through wrapping", func(t *testing.T) {
		inner := New(CodeConflict, "regeneration in flight")
		outer := Wrap(inner, CodeInternal, "mutation rejected")
		if !HasCode(outer, CodeConflict) {
			t.Fatalf("expected inner code to be visible through wrap")
		}
		if !HasCode(outer, CodeInternal) {
			t.Fatalf("expected outer code to match")
		}
	})

	t.Run("matches through fmt.Errorf wrapping", func(t *testing.T) {
		err := fmt.Errorf("save failed: %w", New(CodeUnavailable, "gateway down"))
		if !HasCode(err, CodeUnavailable) {
			t.Fatalf("expected code through %%w chain")
		}
	})

	t.Run("uncoded error matches nothing", func(t *testing.T) {
		if HasCode(errors.New("plain"), CodeInternal) {
			t.Fatalf("plain error must not carry a code")
		}
	})
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CodeInternal, "ignored") != nil {
		t.Fatalf("wrapping nil must return nil")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeBadRequest, "bad")); got != CodeBadRequest {
		t.Fatalf("expected bad_request, got %s", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Fatalf("uncoded errors default to internal, got %s", got)
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(New(CodeValidation, "name required")); got != "name required" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := MessageOf(errors.New("raw text")); got != "raw text" {
		t.Fatalf("unexpected message %q", got)
	}
}
