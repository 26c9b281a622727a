package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrStoreClosed", ErrStoreClosed},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrIndexStale", ErrIndexStale},
		{"ErrInterrupted", ErrInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that the sentinels never alias each other
func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
	assert.False(t, errors.Is(ErrIndexUnavailable, ErrIndexStale))
	assert.False(t, errors.Is(ErrInterrupted, ErrStoreClosed))
}

// TestErrors_Wrapping tests that wrapped sentinels stay matchable
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("recalling candidates: %w", ErrIndexUnavailable)
	assert.True(t, errors.Is(wrapped, ErrIndexUnavailable))
	assert.False(t, errors.Is(wrapped, ErrIndexStale))
}
