package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// ReLUOp represents a ReLU (Rectified Linear Unit) activation: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
//
// The subgradient at exactly zero is taken as 0.
type ReLUOp struct {
	input  mat.Matrix // x
	output *mat.Dense // max(0, x)
}

// ReLU applies max(0, x) elementwise and returns the recorded operation.
func ReLU(input mat.Matrix) *ReLUOp {
	r, c := input.Dims()
	output := mat.NewDense(r, c, nil)
	output.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, input)

	return &ReLUOp{
		input:  input,
		output: output,
	}
}

// Kind returns KindReLU.
func (op *ReLUOp) Kind() Kind { return KindReLU }

// Input returns x.
func (op *ReLUOp) Input() mat.Matrix { return op.input }

// Output returns max(0, x).
func (op *ReLUOp) Output() mat.Matrix { return op.output }

// Backward masks the output gradient with [x > 0].
func (op *ReLUOp) Backward(outputGrad mat.Matrix) (Gradients, error) {
	s := tensor.ShapeOf(op.input)
	if err := tensor.Expect(outputGrad, s, "relu backward"); err != nil {
		return Gradients{}, err
	}

	gradInput := mat.NewDense(s.Rows, s.Cols, nil)
	gradInput.Apply(func(i, j int, g float64) float64 {
		if op.input.At(i, j) > 0 {
			return g
		}
		return 0
	}, outputGrad)

	return Gradients{Input: gradInput}, nil
}

func (op *ReLUOp) sealed() {}
