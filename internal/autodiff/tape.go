package autodiff

import (
	"github.com/born-ml/backprop/internal/autodiff/ops"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyTape is returned when Backward is called on a tape with no operations.
	ErrEmptyTape = errors.New("backward: no operations recorded")

	// ErrTapeConsumed is returned when Backward is called twice on the same tape.
	ErrTapeConsumed = errors.New("backward: tape already consumed")

	// ErrBrokenChain is returned when a recorded operation does not consume
	// the output of the operation recorded before it.
	ErrBrokenChain = errors.New("tape: operation input is not the previous output")
)

// GradientTape records the operations of one forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// A tape is created per forward pass and handed explicitly to Backward;
// there is no process-wide graph. Recorded operations form a chain: each
// operation consumes the output of the one recorded before it.
//
// Usage:
//
//	tape := autodiff.NewGradientTape()
//	scores, _ := model.ForwardOn(tape, x)
//	loss, _ := nn.CrossEntropy(tape, scores, labels)
//	err := autodiff.BackwardLoss(tape)
type GradientTape struct {
	operations []ops.Operation // Recorded operations (in execution order)
	consumed   bool            // Set once Backward has walked the tape
}

// NewGradientTape creates a new, empty gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 8),
	}
}

// Record appends an operation to the tape.
func (t *GradientTape) Record(op ops.Operation) error {
	if t.consumed {
		return ErrTapeConsumed
	}
	if n := len(t.operations); n > 0 && op.Input() != t.operations[n-1].Output() {
		return errors.Wrapf(ErrBrokenChain, "recording %s after %s", op.Kind(), t.operations[n-1].Kind())
	}
	t.operations = append(t.operations, op)
	return nil
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Kinds returns the variants of the recorded operations in execution order.
func (t *GradientTape) Kinds() []ops.Kind {
	kinds := make([]ops.Kind, len(t.operations))
	for i, op := range t.operations {
		kinds[i] = op.Kind()
	}
	return kinds
}

// Output returns the output of the last recorded operation, or nil if the
// tape is empty or consumed.
func (t *GradientTape) Output() mat.Matrix {
	if len(t.operations) == 0 {
		return nil
	}
	return t.operations[len(t.operations)-1].Output()
}

// Consumed reports whether the tape has already been walked by Backward.
func (t *GradientTape) Consumed() bool {
	return t.consumed
}

// Backward walks the tape in reverse and accumulates parameter gradients.
//
// Algorithm:
//  1. The last recorded operation receives seed as dL/d(output)
//  2. Walk operations in reverse order
//  3. Each backward rule yields dL/d(input), which becomes dL/d(output) of
//     the previous operation
//  4. Parameter gradients are added into each parameter's buffer
//
// Activation records are released as they are consumed; a tape can be
// walked only once.
func (t *GradientTape) Backward(seed mat.Matrix) error {
	if t.consumed {
		return ErrTapeConsumed
	}
	if len(t.operations) == 0 {
		return ErrEmptyTape
	}
	if err := tensor.Expect(seed, tensor.ShapeOf(t.Output()), "backward seed"); err != nil {
		return err
	}
	t.consumed = true

	grad := seed
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		grads, err := op.Backward(grad)
		if err != nil {
			return errors.Wrapf(err, "backward through %s (op %d)", op.Kind(), i)
		}
		for _, pg := range grads.Params {
			if err := pg.Param.AccumulateGrad(pg.Grad); err != nil {
				return err
			}
		}
		grad = grads.Input
		t.operations[i] = nil
	}
	t.operations = nil

	return nil
}
