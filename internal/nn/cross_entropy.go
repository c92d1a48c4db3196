package nn

import (
	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/autodiff/ops"
	"gonum.org/v1/gonum/mat"
)

// ErrLabelOutOfRange is returned by CrossEntropy for a label outside [0, num_classes).
var ErrLabelOutOfRange = ops.ErrLabelOutOfRange

// CrossEntropy computes mean(-log_softmax(scores)[labels]) and, when tape is
// non-nil, records the fused log-softmax + NLL operation so BackwardLoss can
// start from it.
//
// Parameters:
//   - tape: tape of the forward pass that produced scores (nil for evaluation)
//   - scores: raw class scores [batch_size, num_classes]
//   - labels: class index per row
//
// Returns the scalar loss.
func CrossEntropy(tape *autodiff.GradientTape, scores mat.Matrix, labels []int) (float64, error) {
	op, err := ops.LogSoftmaxNLL(scores, labels)
	if err != nil {
		return 0, err
	}
	if tape != nil {
		if err := tape.Record(op); err != nil {
			return 0, err
		}
	}
	return op.Loss(), nil
}

// LogSoftmax computes log_softmax row-wise, subtracting each row maximum
// before exponentiating.
func LogSoftmax(scores mat.Matrix) *mat.Dense {
	return ops.LogSoftmax(scores)
}

// Softmax computes softmax row-wise.
func Softmax(scores mat.Matrix) *mat.Dense {
	return ops.Softmax(scores)
}
