package sequence

import (
	"iter"
)

// Iterator is a generic, immutable, chainable iterator for any type T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates a new Iterator from a slice of T. Order is preserved.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Seq returns the underlying sequence function for the iterator.
func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Collect exhausts the iterator and returns a slice of all elements.
func (i *Iterator[T]) Collect() []T {
	var out []T
	i.seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Filter returns a new Iterator that yields only elements matching pred.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			i.seq(func(v T) bool {
				if pred(v) {
					return yield(v)
				}
				return true
			})
		},
	}
}

// Any reports whether at least one element matches pred.
func (i *Iterator[T]) Any(pred func(T) bool) bool {
	found := false
	i.seq(func(v T) bool {
		if pred(v) {
			found = true
			return false
		}
		return true
	})
	return found
}

// All reports whether every element matches pred. True for an empty iterator.
func (i *Iterator[T]) All(pred func(T) bool) bool {
	ok := true
	i.seq(func(v T) bool {
		if !pred(v) {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// Partition splits elements into those matching pred and the rest, keeping order.
func (i *Iterator[T]) Partition(pred func(T) bool) (matches, rest []T) {
	i.seq(func(v T) bool {
		if pred(v) {
			matches = append(matches, v)
		} else {
			rest = append(rest, v)
		}
		return true
	})
	return matches, rest
}

// SumFloat folds the iterator into a float64 total.
func SumFloat[T any](it *Iterator[T], value func(T) float64) float64 {
	total := 0.0
	it.seq(func(v T) bool {
		total += value(v)
		return true
	})
	return total
}
