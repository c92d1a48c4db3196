package tensor

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Shape represents the dimensions of a 2D tensor as (rows, cols).
//
// Every value in this module is a matrix: a batch is [batch_size, features],
// a weight is [out_features, in_features], a bias is [1, out_features] and a
// scalar loss is [1, 1].
type Shape struct {
	Rows int
	Cols int
}

// ShapeOf returns the shape of m.
func ShapeOf(m mat.Matrix) Shape {
	r, c := m.Dims()
	return Shape{Rows: r, Cols: c}
}

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks that both dimensions are positive.
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return errors.Wrapf(ErrShapeMismatch, "invalid shape %v (dimensions must be > 0)", s)
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d, %d]", s.Rows, s.Cols)
}

// Expect returns ErrShapeMismatch wrapped with what when m does not have
// shape want.
func Expect(m mat.Matrix, want Shape, what string) error {
	if got := ShapeOf(m); !got.Equal(want) {
		return errors.Wrapf(ErrShapeMismatch, "%s: expected shape %v, got %v", what, want, got)
	}
	return nil
}
