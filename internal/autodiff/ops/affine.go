package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AffineOp represents a fully connected transform: output = input·Wᵀ + b.
//
// Shapes:
//   - input:  [batch, in]
//   - weight: [out, in]
//   - bias:   [1, out]
//   - output: [batch, out]
//
// Backward pass:
//   - d/d(input)  = outputGrad · W
//   - d/d(weight) = outputGradᵀ · input
//   - d/d(bias)   = column sums of outputGrad
type AffineOp struct {
	input  mat.Matrix
	weight *tensor.Parameter
	bias   *tensor.Parameter
	output *mat.Dense
}

// Affine computes input·Wᵀ + b and returns the recorded operation.
//
// bias may be nil for a bias-free transform.
func Affine(input mat.Matrix, weight, bias *tensor.Parameter) (*AffineOp, error) {
	ws := weight.Shape()
	in := tensor.ShapeOf(input)
	if in.Cols != ws.Cols {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"affine %s: expected input with %d features, got %d", weight.Name(), ws.Cols, in.Cols)
	}
	if bias != nil {
		if err := tensor.Expect(bias.Value(), tensor.Shape{Rows: 1, Cols: ws.Rows}, "affine "+bias.Name()); err != nil {
			return nil, err
		}
	}

	output := mat.NewDense(in.Rows, ws.Rows, nil)
	output.Mul(input, weight.Value().T())
	if bias != nil {
		b := mat.Row(nil, 0, bias.Value())
		for i := 0; i < in.Rows; i++ {
			floats.Add(output.RawRowView(i), b)
		}
	}

	return &AffineOp{
		input:  input,
		weight: weight,
		bias:   bias,
		output: output,
	}, nil
}

// Kind returns KindAffine.
func (op *AffineOp) Kind() Kind { return KindAffine }

// Input returns the [batch, in] input.
func (op *AffineOp) Input() mat.Matrix { return op.input }

// Output returns the [batch, out] output.
func (op *AffineOp) Output() mat.Matrix { return op.output }

// Backward computes input, weight and bias gradients.
func (op *AffineOp) Backward(outputGrad mat.Matrix) (Gradients, error) {
	if err := tensor.Expect(outputGrad, tensor.ShapeOf(op.output), "affine backward"); err != nil {
		return Gradients{}, err
	}
	in := tensor.ShapeOf(op.input)
	ws := op.weight.Shape()

	gradInput := mat.NewDense(in.Rows, in.Cols, nil)
	gradInput.Mul(outputGrad, op.weight.Value())

	gradWeight := mat.NewDense(ws.Rows, ws.Cols, nil)
	gradWeight.Mul(outputGrad.T(), op.input)

	grads := Gradients{
		Input:  gradInput,
		Params: []ParamGrad{{Param: op.weight, Grad: gradWeight}},
	}
	if op.bias != nil {
		grads.Params = append(grads.Params, ParamGrad{Param: op.bias, Grad: columnSums(outputGrad)})
	}
	return grads, nil
}

func (op *AffineOp) sealed() {}
