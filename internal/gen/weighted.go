package gen

import (
	"math/rand"
	"sort"

	"github.com/streamforge/streamforge/internal/errors"
)

// Table is a weighted categorical sampling table built from parallel value and
// weight slices. Weights need not sum to 1; draws scale by the running total,
// so an unnormalized table still samples proportionally.
type Table[T any] struct {
	values []T
	cum    []float64
	total  float64
}

// NewTable builds a sampling table. It rejects empty tables, mismatched
// slices, negative weights, and tables whose weights are all zero.
func NewTable[T any](values []T, weights []float64) (*Table[T], error) {
	if len(values) == 0 {
		return nil, errors.New(errors.ErrCategoryGenerate, errors.CodeEmptyWeightTable, "weight table has no values")
	}
	if len(values) != len(weights) {
		return nil, errors.New(errors.ErrCategoryGenerate, errors.CodeEmptyWeightTable, "values and weights length mismatch")
	}

	t := &Table[T]{
		values: values,
		cum:    make([]float64, len(weights)),
	}
	for i, w := range weights {
		if w < 0 {
			return nil, errors.New(errors.ErrCategoryGenerate, errors.CodeEmptyWeightTable, "negative weight")
		}
		t.total += w
		t.cum[i] = t.total
	}
	if t.total <= 0 {
		return nil, errors.New(errors.ErrCategoryGenerate, errors.CodeEmptyWeightTable, "weights sum to zero")
	}

	return t, nil
}

// Pick draws one value with probability proportional to its weight.
// A value owns the half-open interval [cum[i-1], cum[i]) of the draw space,
// so zero-weight values are unreachable.
func (t *Table[T]) Pick(rng *rand.Rand) T {
	r := rng.Float64() * t.total
	idx := sort.Search(len(t.cum), func(i int) bool { return t.cum[i] > r })
	if idx >= len(t.values) {
		idx = len(t.values) - 1
	}
	return t.values[idx]
}

// Total returns the sum of all weights.
func (t *Table[T]) Total() float64 {
	return t.total
}

// Len returns the number of values in the table.
func (t *Table[T]) Len() int {
	return len(t.values)
}

// mustTable builds a table from static package data; invalid static tables
// are a programming error.
func mustTable[T any](values []T, weights []float64) *Table[T] {
	t, err := NewTable(values, weights)
	if err != nil {
		panic(err)
	}
	return t
}
