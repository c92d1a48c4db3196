// Package nn implements the layers, model container and loss of a
// feed-forward classifier.
//
// This package provides:
//   - Layer interface: closed set of Linear (affine) and ReLU
//   - Sequential: ordered layer stack with width validation at construction
//   - NewMLP: Linear/ReLU/.../Linear builder with Xavier initialization
//   - CrossEntropy: log-softmax + negative log-likelihood loss
//
// Every forward pass that should be differentiated records onto a
// *autodiff.GradientTape supplied by the caller.
package nn

import (
	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Layer is one stage of a Sequential model.
//
// Implemented by *Linear and *ReLU only.
type Layer interface {
	// Forward computes the layer output. When tape is non-nil the operation
	// is recorded on it for the backward pass.
	Forward(tape *autodiff.GradientTape, input mat.Matrix) (mat.Matrix, error)

	// Parameters returns the trainable parameters owned by the layer.
	// Returns nil for parameter-free layers.
	Parameters() []*tensor.Parameter

	// InFeatures returns the expected input width, or 0 if the layer
	// preserves whatever width it receives.
	InFeatures() int

	// OutFeatures returns the output width, or 0 if the layer preserves
	// its input width.
	OutFeatures() int

	String() string

	layer()
}
