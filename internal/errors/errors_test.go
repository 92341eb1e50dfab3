package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestIsType(t *testing.T) {
	base := MissingCell("c0")
	wrapped := fmt.Errorf("loading: %w", base)
	nested := Wrap(TypeInternal, "tabulate", base)

	tests := []struct {
		name string
		err  error
		typ  Type
		want bool
	}{
		{"direct", base, TypeMissingCell, true},
		{"fmt wrapped", wrapped, TypeMissingCell, true},
		{"outer type", nested, TypeInternal, true},
		{"inner type", nested, TypeMissingCell, true},
		{"other type", base, TypeParsing, false},
		{"plain error", io.EOF, TypeInternal, false},
		{"nil", nil, TypeInternal, false},
	}
	for _, tt := range tests {
		if got := IsType(tt.err, tt.typ); got != tt.want {
			t.Errorf("%s: IsType(%v, %s) = %v, want %v", tt.name, tt.err, tt.typ, got, tt.want)
		}
	}
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", InvalidDatabase("ADC"))
	if !stderrors.Is(err, New(TypeInvalidDatabase, "")) {
		t.Error("errors.Is did not match by type")
	}
	if stderrors.Is(err, New(TypeMissingCell, "")) {
		t.Error("errors.Is matched a different type")
	}

	parse := Parsing("bad line", io.ErrUnexpectedEOF)
	if !stderrors.Is(parse, io.ErrUnexpectedEOF) {
		t.Error("cause not reachable through Unwrap")
	}
}

func TestErrorMessage(t *testing.T) {
	err := MissingCell("c9")
	if got, want := err.Error(), "[MISSING_CELL] cannot find core cell in catalog: c9"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Context["cell"] != "c9" {
		t.Errorf("context = %v", err.Context)
	}

	wrapped := Internal("select", io.EOF)
	if got, want := wrapped.Error(), "[INTERNAL_ERROR] select: EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAs(t *testing.T) {
	e, ok := As(fmt.Errorf("x: %w", Input("bad flag")))
	if !ok || e.Type != TypeInput {
		t.Errorf("As() = %v, %v", e, ok)
	}
	if _, ok := As(io.EOF); ok {
		t.Error("As matched a plain error")
	}
}
