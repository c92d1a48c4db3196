package tensor

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Zeros creates a zero-filled matrix of the given shape.
func Zeros(s Shape) *mat.Dense {
	return mat.NewDense(s.Rows, s.Cols, nil)
}

// Filled creates a matrix of the given shape with every element set to v.
func Filled(s Shape, v float64) *mat.Dense {
	data := make([]float64, s.NumElements())
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(s.Rows, s.Cols, data)
}

// FromRows builds a matrix from row slices. All rows must have the same,
// non-zero length.
//
// Example:
//
//	x, err := tensor.FromRows([][]float64{
//	    {1, 2, 3},
//	    {4, 5, 6},
//	})
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "FromRows: empty input")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrShapeMismatch, "FromRows: row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// Clone returns a dense copy of m.
func Clone(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m)
}

// IsFinite reports whether every element of m is neither NaN nor ±Inf.
func IsFinite(m mat.Matrix) bool {
	d := mat.DenseCopyOf(m)
	r, _ := d.Dims()
	for i := 0; i < r; i++ {
		row := d.RawRowView(i)
		if floats.HasNaN(row) || math.IsInf(floats.Max(row), 1) || math.IsInf(floats.Min(row), -1) {
			return false
		}
	}
	return true
}

// CheckFinite returns ErrNonFinite wrapped with what when m holds a NaN or Inf.
func CheckFinite(m mat.Matrix, what string) error {
	if !IsFinite(m) {
		return errors.Wrapf(ErrNonFinite, "%s", what)
	}
	return nil
}

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
// The generator is supplied by the caller so runs are reproducible from a seed;
// there is no package-level random state.
func Xavier(fanIn, fanOut int, s Shape, rng *rand.Rand) *mat.Dense {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	data := make([]float64, s.NumElements())
	for i := range data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return mat.NewDense(s.Rows, s.Cols, data)
}
