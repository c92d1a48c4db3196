// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent optimizers.
//
//	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//	...
//	err = optimizer.Step() // p ← p − lr·grad
//	optimizer.ZeroGrad()
package optim

import (
	"github.com/born-ml/backprop/internal/optim"
	"github.com/born-ml/backprop/internal/tensor"
)

// Optimizer updates parameters from their accumulated gradients.
type Optimizer = optim.Optimizer

// SGD is plain stochastic gradient descent.
type SGD = optim.SGD

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// ErrInvalidLR is returned for a negative or non-finite learning rate.
var ErrInvalidLR = optim.ErrInvalidLR

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*tensor.Parameter, config SGDConfig) (*SGD, error) {
	return optim.NewSGD(params, config)
}
