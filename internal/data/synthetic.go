package data

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Synthetic generates n samples drawn from one Gaussian blob per class.
//
// Class centers are uniform in [-1, 1]^features and samples are the center
// plus N(0, spread²) noise, so the classes are roughly separable for small
// spread. Labels cycle 0, 1, ..., classes-1.
func Synthetic(n, features, classes int, spread float64, rng *rand.Rand) (*Dataset, error) {
	if features <= 0 || classes <= 0 {
		return nil, errors.Errorf("synthetic: features and classes must be > 0, got %d and %d", features, classes)
	}
	centers := make([][]float64, classes)
	for c := range centers {
		centers[c] = make([]float64, features)
		for j := range centers[c] {
			centers[c][j] = rng.Float64()*2 - 1
		}
	}

	xs := make([][]float64, n)
	ys := make([]int, n)
	for i := range xs {
		c := i % classes
		xs[i] = make([]float64, features)
		for j := range xs[i] {
			xs[i][j] = centers[c][j] + spread*rng.NormFloat64()
		}
		ys[i] = c
	}
	return NewDataset(xs, ys)
}
