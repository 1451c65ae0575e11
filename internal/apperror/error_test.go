package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same code", New(CodeEmptyPool), ErrEmptyPool, true},
		{"different code", New(CodeEmptyPool), ErrInvalidFee, false},
		{"wrapped with fmt", fmt.Errorf("quote: %w", New(CodeNoRouteFound)), ErrNoRouteFound, true},
		{"plain error", errors.New("boom"), ErrInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	err := New(CodeInsufficientLiquidity, WithContext("venue=raydium-sol-usdc"))
	msg := err.Error()
	if !strings.Contains(msg, string(CodeInsufficientLiquidity)) {
		t.Errorf("Error() = %q, missing code", msg)
	}
	if !strings.Contains(msg, "venue=raydium-sol-usdc") {
		t.Errorf("Error() = %q, missing context", msg)
	}

	if got := ErrEmptyPool.Error(); !strings.Contains(got, messages[CodeEmptyPool]) {
		t.Errorf("sentinel Error() = %q, want default message", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, CodeInternalError, "x") != nil {
		t.Fatal("Wrap(nil) should return nil")
	}

	cause := errors.New("disk full")
	wrapped := Wrap(cause, CodeConfigurationError, "load")
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error should unwrap to cause")
	}
	if GetCode(wrapped) != CodeConfigurationError {
		t.Errorf("GetCode() = %s", GetCode(wrapped))
	}

	orig := New(CodeNoRouteFound)
	if Wrap(orig, CodeInternalError, "ctx") != orig {
		t.Error("Wrap should return existing AppError unchanged")
	}
	if orig.Context != "ctx" {
		t.Errorf("Context = %q, want ctx", orig.Context)
	}
}

func TestIsVenueLocal(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeEmptyPool, true},
		{CodeInvalidFee, true},
		{CodeInsufficientLiquidity, true},
		{CodeArithmeticOverflow, true},
		{CodeNoRouteFound, false},
		{CodeInvalidRequest, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := IsVenueLocal(New(tt.code)); got != tt.want {
				t.Errorf("IsVenueLocal(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}

	if IsVenueLocal(errors.New("plain")) {
		t.Error("plain errors are not venue-local")
	}
}
