package nn_test

import (
	"testing"

	"github.com/born-ml/backprop/internal/nn"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixture is a 4 → 3 → 2 perceptron with hand-picked weights and a batch of
// two samples. Hidden pre-activations are at least 0.34 away from zero, so
// finite differences never straddle the ReLU kink.
type fixture struct {
	model  *nn.Sequential
	fc1    *nn.Linear
	fc2    *nn.Linear
	w1, b1 *mat.Dense
	w2, b2 *mat.Dense
	x      *mat.Dense
	labels []int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		w1: mat.NewDense(3, 4, []float64{
			0.1, -0.2, 0.3, 0.4,
			-0.5, 0.6, -0.1, 0.2,
			0.3, 0.1, -0.4, -0.2,
		}),
		b1: mat.NewDense(1, 3, []float64{0.1, -0.1, 0.05}),
		w2: mat.NewDense(2, 3, []float64{
			0.2, -0.3, 0.5,
			-0.4, 0.1, 0.3,
		}),
		b2: mat.NewDense(1, 2, []float64{0.0, 0.1}),
		x: mat.NewDense(2, 4, []float64{
			1, 2, 0.5, -1,
			-0.5, 1, 2, 0.3,
		}),
		labels: []int{0, 1},
	}

	var err error
	f.fc1, err = nn.NewLinearFrom("fc1", f.w1, f.b1)
	require.NoError(t, err)
	f.fc2, err = nn.NewLinearFrom("fc2", f.w2, f.b2)
	require.NoError(t, err)
	f.model, err = nn.NewSequential(f.fc1, nn.NewReLU(), f.fc2)
	require.NoError(t, err)
	return f
}

// loss evaluates the fixture without recording.
func (f *fixture) loss(t *testing.T) float64 {
	t.Helper()
	scores, err := f.model.ForwardOn(nil, f.x)
	require.NoError(t, err)
	loss, err := nn.CrossEntropy(nil, scores, f.labels)
	require.NoError(t, err)
	return loss
}
