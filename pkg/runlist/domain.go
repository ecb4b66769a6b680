package runlist

import (
	"golang.org/x/exp/constraints"
)

// Domain describes the value space a run list operates on. The order
// defined by Compare must be a strict total order; Next returns the
// successor of a value and is only used to build single-point runs,
// since runs are half-open.
type Domain[T any] interface {
	Compare(a, b T) int
	Next(v T) T
}

type numeric[T constraints.Integer] struct{}

func (numeric[T]) Compare(a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (numeric[T]) Next(v T) T { return v + 1 }

// Numeric returns the Domain for any integer type, ordered naturally
// with +1 as the successor step.
func Numeric[T constraints.Integer]() Domain[T] {
	return numeric[T]{}
}
