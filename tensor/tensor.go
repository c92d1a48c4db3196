// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense matrices and trainable parameters used
// throughout backprop.
//
// Matrices are gonum *mat.Dense values. A Parameter pairs a value matrix with
// a gradient buffer of the same shape:
//
//	w := tensor.NewParameter("fc1.weight", tensor.Zeros(tensor.Shape{Rows: 128, Cols: 784}))
//	w.Grad()    // all zeros until a backward pass accumulates into it
//	w.ZeroGrad()
package tensor

import (
	"math/rand"

	"github.com/born-ml/backprop/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Shape is the (rows, cols) extent of a matrix.
type Shape = tensor.Shape

// Parameter is a named trainable matrix with its gradient buffer.
type Parameter = tensor.Parameter

// Errors shared by every package.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrNonFinite     = tensor.ErrNonFinite
)

// NewParameter creates a parameter owning value, with a zeroed gradient.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return tensor.NewParameter(name, value)
}

// Zeros returns a zero matrix of shape s.
func Zeros(s Shape) *mat.Dense {
	return tensor.Zeros(s)
}

// FromRows builds a matrix from equal-length rows.
//
// Example:
//
//	x, err := tensor.FromRows([][]float64{{1, 2}, {3, 4}})
func FromRows(rows [][]float64) (*mat.Dense, error) {
	return tensor.FromRows(rows)
}

// Xavier returns a Glorot-uniform matrix of shape s drawn from rng.
func Xavier(fanIn, fanOut int, s Shape, rng *rand.Rand) *mat.Dense {
	return tensor.Xavier(fanIn, fanOut, s, rng)
}

// IsFinite reports whether m holds no NaN or infinite element.
func IsFinite(m mat.Matrix) bool {
	return tensor.IsFinite(m)
}
