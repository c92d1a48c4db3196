// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Step / ZeroGrad / LR
//   - SGD: plain stochastic gradient descent
//
// Example usage:
//
//	optimizer, _ := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for _, batch := range batches {
//	    optimizer.ZeroGrad()
//	    scores, tape, _ := model.Forward(batch.X)
//	    loss, _ := nn.CrossEntropy(tape, scores, batch.Labels)
//	    _ = autodiff.BackwardLoss(tape)
//	    _ = optimizer.Step()
//	}
package optim

import "github.com/pkg/errors"

// ErrInvalidLR is returned for a negative or non-finite learning rate.
var ErrInvalidLR = errors.New("invalid learning rate")

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers own the parameter update and the clearing of gradient buffers.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place, reading the
	// gradients accumulated by the last backward pass(es).
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// This must be called before each forward/backward cycle because the
	// differentiator adds into the gradient buffers.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}
