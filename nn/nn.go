// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers, models and loss used to build a
// multi-layer perceptron classifier.
//
// # Basic Usage
//
//	rng := rand.New(rand.NewSource(42))
//	model, err := nn.NewMLP([]int{784, 128, 10}, rng)
//
//	scores, tape, err := model.Forward(x)
//	loss, err := nn.CrossEntropy(tape, scores, labels)
//
// Layers form a closed set: Linear and ReLU.
package nn

import (
	"math/rand"

	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/nn"
	"gonum.org/v1/gonum/mat"
)

// Layer is one stage of a Sequential model.
type Layer = nn.Layer

// Linear is a fully connected layer.
type Linear = nn.Linear

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// Sequential is an ordered stack of layers.
type Sequential = nn.Sequential

// ErrLabelOutOfRange is returned when a label is not a valid class index.
var ErrLabelOutOfRange = nn.ErrLabelOutOfRange

// NewLinear creates a linear layer with Xavier weights and zero bias.
// It returns ErrShapeMismatch unless both sizes are positive.
func NewLinear(name string, inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	return nn.NewLinear(name, inFeatures, outFeatures, rng)
}

// NewLinearFrom creates a linear layer from explicit weight [out, in] and
// bias [1, out] matrices.
func NewLinearFrom(name string, weight, bias *mat.Dense) (*Linear, error) {
	return nn.NewLinearFrom(name, weight, bias)
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// NewSequential validates and chains layers.
//
// Example:
//
//	fc1, _ := nn.NewLinear("fc1", 784, 128, rng)
//	fc2, _ := nn.NewLinear("fc2", 128, 10, rng)
//	model, err := nn.NewSequential(fc1, nn.NewReLU(), fc2)
func NewSequential(layers ...Layer) (*Sequential, error) {
	return nn.NewSequential(layers...)
}

// NewMLP builds Linear → ReLU → ... → Linear for the given layer widths.
func NewMLP(sizes []int, rng *rand.Rand) (*Sequential, error) {
	return nn.NewMLP(sizes, rng)
}

// CrossEntropy returns the mean negative log-likelihood of labels under
// softmax(scores), recording it on tape when tape is non-nil.
func CrossEntropy(tape *autodiff.GradientTape, scores mat.Matrix, labels []int) (float64, error) {
	return nn.CrossEntropy(tape, scores, labels)
}

// LogSoftmax returns the row-wise log-softmax of scores.
func LogSoftmax(scores mat.Matrix) *mat.Dense {
	return nn.LogSoftmax(scores)
}
