package synth

import "fmt"

// CurveError reports a failed (guide, root) pair.
type CurveError struct {
	Guide int // guide curve index
	Root  int // dense root point index
	Err   error
}

func (e *CurveError) Error() string {
	return fmt.Sprintf("guide %d root %d: %v", e.Guide, e.Root, e.Err)
}

func (e *CurveError) Unwrap() error { return e.Err }
