package ops

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogSoftmax computes log_softmax row-wise with numerical stability.
//
//	log_softmax(z) = z - (max(z) + log(Σ exp(z - max(z))))
//
// Subtracting the row maximum keeps every exponent ≤ 0, so exp never
// overflows for finite input.
func LogSoftmax(scores mat.Matrix) *mat.Dense {
	r, c := scores.Dims()
	out := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, scores)
		logSoftmaxRow(out.RawRowView(i), row)
	}
	return out
}

// Softmax computes softmax row-wise as exp(LogSoftmax(scores)).
func Softmax(scores mat.Matrix) *mat.Dense {
	out := LogSoftmax(scores)
	out.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, out)
	return out
}

// logSoftmaxRow writes log_softmax(src) into dst.
func logSoftmaxRow(dst, src []float64) {
	maxVal := floats.Max(src)

	sumExp := 0.0
	for _, v := range src {
		sumExp += math.Exp(v - maxVal)
	}
	logSumExp := maxVal + math.Log(sumExp)

	for j, v := range src {
		dst[j] = v - logSumExp
	}
}
