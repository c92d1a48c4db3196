package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/autodiff/ops"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x · Wᵀ + b
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias row with shape [1, out_features]
//   - y is the output with shape [batch_size, out_features]
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	layer, err := nn.NewLinear("fc1", 784, 128, rng)
//	out, err := layer.Forward(tape, x) // [32, 128] for a [32, 784] batch
type Linear struct {
	name        string
	inFeatures  int
	outFeatures int
	weight      *tensor.Parameter // [out_features, in_features]
	bias        *tensor.Parameter // [1, out_features]
}

// NewLinear creates a new Linear layer.
//
// Weights are initialized using Xavier/Glorot uniform distribution drawn
// from rng. Biases are initialized to zeros. Both sizes must be positive.
func NewLinear(name string, inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	ws := tensor.Shape{Rows: outFeatures, Cols: inFeatures}
	if err := ws.Validate(); err != nil {
		return nil, errors.Wrapf(err, "linear %s", name)
	}
	weight := tensor.Xavier(inFeatures, outFeatures, ws, rng)
	bias := tensor.Zeros(tensor.Shape{Rows: 1, Cols: outFeatures})
	return NewLinearFrom(name, weight, bias)
}

// NewLinearFrom creates a Linear layer that takes ownership of explicit
// weight [out, in] and bias [1, out] matrices.
//
// Useful for tests and for reproducing a known initialization.
func NewLinearFrom(name string, weight, bias *mat.Dense) (*Linear, error) {
	ws := tensor.ShapeOf(weight)
	if err := ws.Validate(); err != nil {
		return nil, errors.Wrapf(err, "linear %s weight", name)
	}
	if err := tensor.Expect(bias, tensor.Shape{Rows: 1, Cols: ws.Rows}, "linear "+name+" bias"); err != nil {
		return nil, err
	}

	return &Linear{
		name:        name,
		inFeatures:  ws.Cols,
		outFeatures: ws.Rows,
		weight:      tensor.NewParameter(name+".weight", weight),
		bias:        tensor.NewParameter(name+".bias", bias),
	}, nil
}

// Forward computes x · Wᵀ + b.
func (l *Linear) Forward(tape *autodiff.GradientTape, input mat.Matrix) (mat.Matrix, error) {
	op, err := ops.Affine(input, l.weight, l.bias)
	if err != nil {
		return nil, err
	}
	if tape != nil {
		if err := tape.Record(op); err != nil {
			return nil, err
		}
	}
	return op.Output(), nil
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*tensor.Parameter {
	return []*tensor.Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *tensor.Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *tensor.Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(%s: %d → %d)", l.name, l.inFeatures, l.outFeatures)
}

func (l *Linear) layer() {}
