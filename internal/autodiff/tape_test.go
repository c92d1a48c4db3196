package autodiff_test

import (
	"testing"

	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/autodiff/ops"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newAffine(t *testing.T) (*tensor.Parameter, *tensor.Parameter, *mat.Dense) {
	t.Helper()
	w := tensor.NewParameter("w", mat.NewDense(2, 3, []float64{
		0.2, -0.4, 0.1,
		0.7, 0.3, -0.6,
	}))
	b := tensor.NewParameter("b", mat.NewDense(1, 2, []float64{0.05, -0.1}))
	x := mat.NewDense(3, 3, []float64{
		1.0, 2.0, -1.0,
		0.5, -0.3, 0.8,
		-1.2, 0.4, 0.9,
	})
	return w, b, x
}

// TestBackward_AffineMeanSquaredClosedForm checks the weight gradient of
// L = mean(Y²), Y = X·Wᵀ + b, against dL/dW = (2/N)·Yᵀ·X.
func TestBackward_AffineMeanSquaredClosedForm(t *testing.T) {
	w, b, x := newAffine(t)

	tape := autodiff.NewGradientTape()
	op, err := ops.Affine(x, w, b)
	require.NoError(t, err)
	require.NoError(t, tape.Record(op))

	y := op.Output()
	rows, cols := y.Dims()
	n := float64(rows * cols)

	// dL/dY = 2Y/N
	seed := mat.NewDense(rows, cols, nil)
	seed.Scale(2/n, y)
	require.NoError(t, tape.Backward(seed))

	_, in := x.Dims()
	for o := 0; o < cols; o++ {
		for k := 0; k < in; k++ {
			want := 0.0
			for i := 0; i < rows; i++ {
				want += 2 / n * y.At(i, o) * x.At(i, k)
			}
			assert.InDelta(t, want, w.Grad().At(o, k), 1e-6, "dW[%d][%d]", o, k)
		}
		wantBias := 0.0
		for i := 0; i < rows; i++ {
			wantBias += 2 / n * y.At(i, o)
		}
		assert.InDelta(t, wantBias, b.Grad().At(0, o), 1e-6, "db[%d]", o)
	}
}

func TestBackward_AccumulatesAcrossTapes(t *testing.T) {
	w, b, x := newAffine(t)
	seed := mat.NewDense(3, 2, []float64{1, -1, 0.5, 2, -0.25, 0})

	run := func() {
		tape := autodiff.NewGradientTape()
		op, err := ops.Affine(x, w, b)
		require.NoError(t, err)
		require.NoError(t, tape.Record(op))
		require.NoError(t, tape.Backward(seed))
	}

	run()
	once := mat.DenseCopyOf(w.Grad())
	run()

	var twice mat.Dense
	twice.Scale(2, once)
	assert.True(t, mat.Equal(&twice, w.Grad()))
}

func TestBackward_Errors(t *testing.T) {
	t.Run("empty tape", func(t *testing.T) {
		err := autodiff.BackwardLoss(autodiff.NewGradientTape())
		assert.True(t, errors.Is(err, autodiff.ErrEmptyTape))
	})

	t.Run("consumed tape", func(t *testing.T) {
		tape := autodiff.NewGradientTape()
		op, err := ops.LogSoftmaxNLL(mat.NewDense(1, 2, []float64{1, 2}), []int{0})
		require.NoError(t, err)
		require.NoError(t, tape.Record(op))

		require.NoError(t, autodiff.BackwardLoss(tape))
		assert.True(t, tape.Consumed())
		assert.Equal(t, 0, tape.NumOps())

		assert.True(t, errors.Is(autodiff.BackwardLoss(tape), autodiff.ErrTapeConsumed))
		assert.True(t, errors.Is(tape.Record(op), autodiff.ErrTapeConsumed))
	})

	t.Run("seed shape", func(t *testing.T) {
		w, b, x := newAffine(t)
		tape := autodiff.NewGradientTape()
		op, err := ops.Affine(x, w, b)
		require.NoError(t, err)
		require.NoError(t, tape.Record(op))

		err = autodiff.BackwardLoss(tape) // output is [3, 2], not a scalar
		assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
		assert.False(t, tape.Consumed())
	})
}

func TestRecord_RejectsBrokenChain(t *testing.T) {
	tape := autodiff.NewGradientTape()
	x := mat.NewDense(1, 2, []float64{-1, 1})
	require.NoError(t, tape.Record(ops.ReLU(x)))

	// Consumes x again rather than the previous output.
	err := tape.Record(ops.ReLU(x))
	assert.True(t, errors.Is(err, autodiff.ErrBrokenChain))

	require.NoError(t, tape.Record(ops.ReLU(tape.Output())))
	assert.Equal(t, []ops.Kind{ops.KindReLU, ops.KindReLU}, tape.Kinds())
}

func TestBackward_ChainsThroughReLU(t *testing.T) {
	w := tensor.NewParameter("w", mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	x := mat.NewDense(1, 2, []float64{-3, 2})

	tape := autodiff.NewGradientTape()
	relu := ops.ReLU(x)
	require.NoError(t, tape.Record(relu))
	affine, err := ops.Affine(relu.Output(), w, nil)
	require.NoError(t, err)
	require.NoError(t, tape.Record(affine))

	require.NoError(t, tape.Backward(mat.NewDense(1, 2, []float64{1, 1})))

	// relu(x) = [0, 2]; dW = gᵀ·relu(x)
	assert.Equal(t, []float64{0, 2, 0, 2}, mat.DenseCopyOf(w.Grad()).RawMatrix().Data)
}
