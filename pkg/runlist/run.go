package runlist

// run is a half-open interval [b, e), b inclusive, e exclusive.
// Stored runs always satisfy b < e; zero-length runs are never
// constructed.
type run[T any] struct {
	b T
	e T
}

// overlaps reports whether x and y share at least one value, given
// cmp. For half-open intervals this is true iff each begins strictly
// before the other ends.
func overlaps[T any](cmp func(a, b T) int, x, y run[T]) bool {
	return cmp(x.b, y.e) < 0 && cmp(y.b, x.e) < 0
}

// touchesOrOverlaps additionally accepts adjacency (x.e == y.b or
// y.e == x.b): the condition under which two runs merge into one.
func touchesOrOverlaps[T any](cmp func(a, b T) int, x, y run[T]) bool {
	return cmp(x.b, y.e) <= 0 && cmp(y.b, x.e) <= 0
}
