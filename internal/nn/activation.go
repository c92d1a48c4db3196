package nn

import (
	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/autodiff/ops"
	"github.com/born-ml/backprop/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// ReLU is a Rectified Linear Unit activation layer.
//
// Applies ReLU(x) = max(0, x) element-wise. It has no parameters and
// preserves the width of its input.
type ReLU struct{}

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies max(0, x).
func (r *ReLU) Forward(tape *autodiff.GradientTape, input mat.Matrix) (mat.Matrix, error) {
	op := ops.ReLU(input)
	if tape != nil {
		if err := tape.Record(op); err != nil {
			return nil, err
		}
	}
	return op.Output(), nil
}

// Parameters returns nil.
func (r *ReLU) Parameters() []*tensor.Parameter {
	return nil
}

// InFeatures returns 0 (width-preserving).
func (r *ReLU) InFeatures() int { return 0 }

// OutFeatures returns 0 (width-preserving).
func (r *ReLU) OutFeatures() int { return 0 }

func (r *ReLU) String() string {
	return "ReLU"
}

func (r *ReLU) layer() {}
