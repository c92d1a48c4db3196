package tensor

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable matrix (a weight or a bias) together with
// its accumulated-gradient buffer.
//
// A Parameter is owned by exactly one layer. Its shape is fixed at
// construction and never changes. The gradient buffer has the same shape,
// starts at zero and is only written through two paths:
//   - AccumulateGrad, called by the differentiator during a backward pass
//   - ZeroGrad and ApplyUpdate, called by the optimizer
//
// Example:
//
//	w := tensor.NewParameter("fc1.weight", tensor.Xavier(4, 3, tensor.Shape{Rows: 3, Cols: 4}, rng))
//	// ... backward pass ...
//	fmt.Println(mat.Formatted(w.Grad()))
type Parameter struct {
	name  string
	shape Shape
	value *mat.Dense
	grad  *mat.Dense
}

// NewParameter creates a new trainable parameter that takes ownership of
// value. The gradient buffer is allocated zeroed.
func NewParameter(name string, value *mat.Dense) *Parameter {
	s := ShapeOf(value)
	return &Parameter{
		name:  name,
		shape: s,
		value: value,
		grad:  Zeros(s),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns the fixed parameter shape.
func (p *Parameter) Shape() Shape {
	return p.shape
}

// Value returns a read-only view of the parameter values.
func (p *Parameter) Value() mat.Matrix {
	return p.value
}

// Grad returns a read-only view of the accumulated gradient.
func (p *Parameter) Grad() mat.Matrix {
	return p.grad
}

// NumElements returns the number of scalar values held by the parameter.
func (p *Parameter) NumElements() int {
	return p.shape.NumElements()
}

// AccumulateGrad adds g into the gradient buffer.
//
// Gradients are summed rather than overwritten, so repeated backward passes
// without an intervening ZeroGrad accumulate.
func (p *Parameter) AccumulateGrad(g mat.Matrix) error {
	if err := Expect(g, p.shape, "accumulate grad for "+p.name); err != nil {
		return err
	}
	p.grad.Add(p.grad, g)
	return nil
}

// ZeroGrad sets every element of the gradient buffer to zero.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
}

// ApplyUpdate performs value ← value − alpha·grad in place.
func (p *Parameter) ApplyUpdate(alpha float64) error {
	var step mat.Dense
	step.Scale(alpha, p.grad)
	p.value.Sub(p.value, &step)
	if !IsFinite(p.value) {
		return errors.Wrapf(ErrNonFinite, "parameter %s after update", p.name)
	}
	return nil
}
