package tensor

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch is returned when two values that must agree in shape
	// do not, e.g. consecutive layers or a batch and the model input width.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNonFinite is returned when a NaN or Inf appears in a value that
	// must stay finite (scores, loss, parameters).
	ErrNonFinite = errors.New("non-finite value")
)
