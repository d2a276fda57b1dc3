package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := Config("missing_env", "TB_APP_KEY is required")
	wrapped := fmt.Errorf("fetch: %w", base)

	if got := KindOf(wrapped); got != KindConfig {
		t.Fatalf("KindOf: want=%q got=%q", KindConfig, got)
	}
	if got := ExitCode(wrapped); got != 2 {
		t.Fatalf("ExitCode: want=2 got=%d", got)
	}
	if wrapped.Error() != "fetch: TB_APP_KEY is required" {
		t.Fatalf("Error(): got=%q", wrapped.Error())
	}
}

type kindErr struct{}

func (kindErr) Error() string   { return "remote" }
func (kindErr) ErrorKind() Kind { return KindTransport }

func TestKindOfInterface(t *testing.T) {
	err := fmt.Errorf("search: %w", kindErr{})
	if got := KindOf(err); got != KindTransport {
		t.Fatalf("KindOf: want=%q got=%q", KindTransport, got)
	}
	if got := ExitCode(err); got != 1 {
		t.Fatalf("ExitCode: want=1 got=%d", got)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Fatalf("KindOf: want=%q got=%q", KindUnknown, got)
	}
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil): want=0 got=%d", got)
	}
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("db down")
	err := Persistence("insert_items", sentinel)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to find sentinel")
	}
}
