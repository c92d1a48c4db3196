// Package ops defines the differentiable operations recorded on a gradient tape.
//
// The set of operations is closed. Each variant computes its forward value
// when constructed and carries a pure backward rule that maps the gradient of
// the loss w.r.t. its output to:
//   - the gradient w.r.t. its input
//   - the gradients w.r.t. any parameters it reads
//
// Supported operations:
//   - AffineOp: out = in·Wᵀ + b (d/din = g·W, d/dW = gᵀ·in, d/db = Σrows g)
//   - ReLUOp: out = max(0, x) (d/dx = g where x > 0, else 0)
//   - LogSoftmaxNLLOp: mean(-log_softmax(z)[y]) (d/dz = (softmax(z) - onehot(y)) / batch)
//
// Backward rules never write to parameters. The tape owns that step.
package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Kind identifies an operation variant.
type Kind int

// Operation variants.
const (
	KindAffine Kind = iota
	KindReLU
	KindLogSoftmaxNLL
)

func (k Kind) String() string {
	switch k {
	case KindAffine:
		return "affine"
	case KindReLU:
		return "relu"
	case KindLogSoftmaxNLL:
		return "log_softmax_nll"
	default:
		return "unknown"
	}
}

// Operation is one activation record: the input and output of a forward
// operation plus whatever the backward rule needs.
//
// The interface is sealed; only the variants in this package implement it.
type Operation interface {
	// Kind returns the operation variant.
	Kind() Kind

	// Input returns the value the operation consumed.
	Input() mat.Matrix

	// Output returns the value the operation produced.
	Output() mat.Matrix

	// Backward computes gradients given the gradient of the loss w.r.t.
	// Output. It has no side effects.
	Backward(outputGrad mat.Matrix) (Gradients, error)

	sealed()
}

// ParamGrad pairs a parameter with the gradient one backward step produced for it.
type ParamGrad struct {
	Param *tensor.Parameter
	Grad  *mat.Dense
}

// Gradients is the result of one backward rule.
type Gradients struct {
	Input  *mat.Dense  // dL/d(input)
	Params []ParamGrad // dL/d(param) for each parameter read by the op
}
