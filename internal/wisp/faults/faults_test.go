package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	for _, sentinel := range []error{ErrShapeMismatch, ErrDegenerateGeometry, ErrInsufficientCandidates} {
		wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", sentinel))
		if !errors.Is(wrapped, sentinel) {
			t.Errorf("errors.Is(%v, %v) = false, want true", wrapped, sentinel)
		}
	}
	if errors.Is(ErrShapeMismatch, ErrDegenerateGeometry) {
		t.Error("distinct sentinels must not match each other")
	}
}
