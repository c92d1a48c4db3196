package ops

import (
	"math"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrLabelOutOfRange is returned when a class label falls outside [0, num_classes).
var ErrLabelOutOfRange = errors.New("label out of range")

// LogSoftmaxNLLOp represents the fused log-softmax + negative log-likelihood loss.
//
// Forward:
//
//	Loss = mean(-log_softmax(scores)[labels])
//
// Backward:
//
//	∂L/∂scores = (softmax(scores) - y_one_hot) / batch_size
//
// scaled by the incoming scalar gradient.
//
// Assumptions:
//   - Scores shape: [batch_size, num_classes]
//   - Labels: batch_size class indices
//   - Output: [1, 1] scalar loss (mean over batch)
type LogSoftmaxNLLOp struct {
	scores   mat.Matrix
	labels   []int
	logProbs *mat.Dense // log_softmax(scores), kept for the backward rule
	output   *mat.Dense
}

// LogSoftmaxNLL computes the mean negative log-likelihood of labels under
// log_softmax(scores) and returns the recorded operation.
//
// Errors:
//   - tensor.ErrShapeMismatch if len(labels) differs from the number of rows
//   - ErrLabelOutOfRange if any label is outside [0, num_classes)
//   - tensor.ErrNonFinite if the scores or the resulting loss are NaN/Inf
func LogSoftmaxNLL(scores mat.Matrix, labels []int) (*LogSoftmaxNLLOp, error) {
	batchSize, numClasses := scores.Dims()
	if len(labels) != batchSize {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"loss: %d labels for %d score rows", len(labels), batchSize)
	}
	for i, y := range labels {
		if y < 0 || y >= numClasses {
			return nil, errors.Wrapf(ErrLabelOutOfRange,
				"loss: label %d at row %d not in [0, %d)", y, i, numClasses)
		}
	}
	if err := tensor.CheckFinite(scores, "loss: scores"); err != nil {
		return nil, err
	}

	logProbs := LogSoftmax(scores)
	total := 0.0
	for i, y := range labels {
		total -= logProbs.At(i, y)
	}
	loss := total / float64(batchSize)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return nil, errors.Wrapf(tensor.ErrNonFinite, "loss: value %v", loss)
	}

	return &LogSoftmaxNLLOp{
		scores:   scores,
		labels:   labels,
		logProbs: logProbs,
		output:   mat.NewDense(1, 1, []float64{loss}),
	}, nil
}

// Kind returns KindLogSoftmaxNLL.
func (op *LogSoftmaxNLLOp) Kind() Kind { return KindLogSoftmaxNLL }

// Input returns the raw scores.
func (op *LogSoftmaxNLLOp) Input() mat.Matrix { return op.scores }

// Output returns the [1, 1] loss.
func (op *LogSoftmaxNLLOp) Output() mat.Matrix { return op.output }

// Loss returns the scalar loss value.
func (op *LogSoftmaxNLLOp) Loss() float64 { return op.output.At(0, 0) }

// Backward computes the gradient with respect to the scores.
func (op *LogSoftmaxNLLOp) Backward(outputGrad mat.Matrix) (Gradients, error) {
	if err := tensor.Expect(outputGrad, tensor.Shape{Rows: 1, Cols: 1}, "loss backward"); err != nil {
		return Gradients{}, err
	}
	gradScale := outputGrad.At(0, 0)

	batchSize, numClasses := op.logProbs.Dims()
	grad := mat.NewDense(batchSize, numClasses, nil)
	scale := gradScale / float64(batchSize)
	for i, y := range op.labels {
		row := grad.RawRowView(i)
		for j := 0; j < numClasses; j++ {
			p := math.Exp(op.logProbs.At(i, j))
			if j == y {
				p -= 1.0
			}
			row[j] = scale * p
		}
	}

	return Gradients{Input: grad}, nil
}

func (op *LogSoftmaxNLLOp) sealed() {}
