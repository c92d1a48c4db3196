package ops

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// columnSums reduces an [n, m] matrix to [1, m] by summing rows.
func columnSums(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	sum := make([]float64, c)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		floats.Add(sum, row)
	}
	return mat.NewDense(1, c, sum)
}
