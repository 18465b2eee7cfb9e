package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeConfig, "unsupported output format: %s", "xml")
	assert.Equal(t, "unsupported output format: xml", err.Error())

	cause := stderrors.New("disk full")
	wrapped := Wrap(ErrorTypePersistence, cause, "failed to write results")
	assert.Equal(t, "failed to write results: disk full", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsType(t *testing.T) {
	inner := New(ErrorTypeRateLimit, "rate limit exceeded").WithCode(429)
	outer := Wrap(ErrorTypeCollection, inner, "failed to collect alice")
	viaFmt := fmt.Errorf("run failed: %w", outer)

	tests := []struct {
		name string
		err  error
		typ  ErrorType
		want bool
	}{
		{"direct", inner, ErrorTypeRateLimit, true},
		{"outer type", outer, ErrorTypeCollection, true},
		{"nested type", outer, ErrorTypeRateLimit, true},
		{"through fmt wrap", viaFmt, ErrorTypeRateLimit, true},
		{"absent type", outer, ErrorTypeAuth, false},
		{"plain error", stderrors.New("boom"), ErrorTypeUnknown, false},
		{"nil", nil, ErrorTypeConfig, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.typ))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeAuth, TypeOf(fmt.Errorf("x: %w", New(ErrorTypeAuth, "denied"))))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.Equal(t, 429, New(ErrorTypeRateLimit, "slow down").WithCode(429).Code)
}
