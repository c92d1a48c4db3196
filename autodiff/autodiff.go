// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Each forward pass records onto its own GradientTape. Walking the tape
// backward accumulates gradients into the parameters the recorded
// operations reference:
//
//	scores, tape, err := model.Forward(x)
//	loss, err := nn.CrossEntropy(tape, scores, labels)
//	err = autodiff.BackwardLoss(tape) // parameter grads now hold dLoss/dP
//
// A tape can be walked once.
package autodiff

import (
	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/autodiff/ops"
)

// GradientTape records the operations of one forward pass.
type GradientTape = autodiff.GradientTape

// Operation is a recorded differentiable operation.
type Operation = ops.Operation

// Kind identifies an operation variant.
type Kind = ops.Kind

// Operation kinds.
const (
	KindAffine        = ops.KindAffine
	KindReLU          = ops.KindReLU
	KindLogSoftmaxNLL = ops.KindLogSoftmaxNLL
)

// Tape errors.
var (
	ErrEmptyTape    = autodiff.ErrEmptyTape
	ErrTapeConsumed = autodiff.ErrTapeConsumed
	ErrBrokenChain  = autodiff.ErrBrokenChain
)

// NewGradientTape creates an empty tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardLoss walks a tape that ends in a scalar loss, seeding it with 1.
func BackwardLoss(t *GradientTape) error {
	return autodiff.BackwardLoss(t)
}
