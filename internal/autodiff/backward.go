package autodiff

import "gonum.org/v1/gonum/mat"

// BackwardLoss runs Backward on a tape whose last operation produced a
// scalar loss, seeding it with dL/dL = 1.
func BackwardLoss(t *GradientTape) error {
	return t.Backward(mat.NewDense(1, 1, []float64{1}))
}
