package train_test

import (
	"bytes"
	"log"
	"math/rand"
	"strings"
	"testing"

	"github.com/born-ml/backprop/internal/data"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/born-ml/backprop/internal/train"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixedModel is a 4 → 3 → 2 perceptron with a fixed initialization.
func fixedModel(t *testing.T) *nn.Sequential {
	t.Helper()
	fc1, err := nn.NewLinearFrom("fc1",
		mat.NewDense(3, 4, []float64{
			0.1, -0.2, 0.3, 0.4,
			-0.5, 0.6, -0.1, 0.2,
			0.3, 0.1, -0.4, -0.2,
		}),
		mat.NewDense(1, 3, []float64{0.1, -0.1, 0.05}),
	)
	require.NoError(t, err)
	fc2, err := nn.NewLinearFrom("fc2",
		mat.NewDense(2, 3, []float64{
			0.2, -0.3, 0.5,
			-0.4, 0.1, 0.3,
		}),
		mat.NewDense(1, 2, []float64{0.0, 0.1}),
	)
	require.NoError(t, err)
	model, err := nn.NewSequential(fc1, nn.NewReLU(), fc2)
	require.NoError(t, err)
	return model
}

func fixedBatch() data.Batch {
	return data.Batch{
		X: mat.NewDense(2, 4, []float64{
			1, 2, 0.5, -1,
			-0.5, 1, 2, 0.3,
		}),
		Labels: []int{0, 1},
	}
}

func newTrainer(t *testing.T, model *nn.Sequential, lr float64, reporter train.Reporter) *train.Trainer {
	t.Helper()
	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: lr})
	require.NoError(t, err)
	return train.New(model, optimizer, reporter)
}

func evalLoss(t *testing.T, model *nn.Sequential, b data.Batch) float64 {
	t.Helper()
	scores, err := model.ForwardOn(nil, b.X)
	require.NoError(t, err)
	loss, err := nn.CrossEntropy(nil, scores, b.Labels)
	require.NoError(t, err)
	return loss
}

// TestTrainer_SingleStepRegression pins the loss of a 4 → 3 → 2 perceptron
// on a batch of two samples before and after one SGD step with lr = 0.1.
func TestTrainer_SingleStepRegression(t *testing.T) {
	model := fixedModel(t)
	batch := fixedBatch()
	trainer := newTrainer(t, model, 0.1, nil)

	before, err := trainer.Step(batch)
	require.NoError(t, err)
	after := evalLoss(t, model, batch)

	assert.InDelta(t, 0.72620293762077637, before, 1e-12)
	assert.InDelta(t, 0.69380179527297114, after, 1e-12)
	assert.Less(t, after, before)
	assert.Equal(t, train.Idle, trainer.State())
}

// TestTrainer_SingleStepSeeded repeats the single step with Xavier weights
// drawn from seed 42 and pins both losses.
func TestTrainer_SingleStepSeeded(t *testing.T) {
	model, err := nn.NewMLP([]int{4, 3, 2}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	batch := fixedBatch()
	trainer := newTrainer(t, model, 0.1, nil)

	before, err := trainer.Step(batch)
	require.NoError(t, err)
	assert.InDelta(t, before, trainer.Loss(), 0)

	after := evalLoss(t, model, batch)
	assert.InDelta(t, 0.45365282108549815, before, 1e-12)
	assert.InDelta(t, 0.4307020127524242, after, 1e-12)
	assert.Less(t, after, before)
}

func TestTrainer_StepClearsGradients(t *testing.T) {
	model := fixedModel(t)
	trainer := newTrainer(t, model, 0.1, nil)

	_, err := trainer.Step(fixedBatch())
	require.NoError(t, err)

	for _, p := range model.Parameters() {
		assert.True(t, mat.Equal(p.Grad(), tensor.Zeros(p.Shape())), p.Name())
	}
}

func TestTrainer_StateMachine(t *testing.T) {
	trainer := newTrainer(t, fixedModel(t), 0.1, nil)
	require.Equal(t, train.Idle, trainer.State())

	// Out of order stages are rejected without changing state.
	_, err := trainer.ComputeLoss()
	assert.True(t, errors.Is(err, train.ErrInvalidTransition))
	assert.True(t, errors.Is(trainer.Backward(), train.ErrInvalidTransition))
	assert.True(t, errors.Is(trainer.Update(), train.ErrInvalidTransition))
	assert.True(t, errors.Is(trainer.Finish(), train.ErrInvalidTransition))
	assert.Equal(t, train.Idle, trainer.State())

	require.NoError(t, trainer.Forward(fixedBatch()))
	assert.Equal(t, train.ForwardPass, trainer.State())
	assert.True(t, errors.Is(trainer.Forward(fixedBatch()), train.ErrInvalidTransition))

	_, err = trainer.ComputeLoss()
	require.NoError(t, err)
	assert.Equal(t, train.LossComputed, trainer.State())

	require.NoError(t, trainer.Backward())
	assert.Equal(t, train.BackwardPass, trainer.State())

	require.NoError(t, trainer.Update())
	assert.Equal(t, train.Updated, trainer.State())

	require.NoError(t, trainer.Finish())
	assert.Equal(t, train.Idle, trainer.State())
}

func TestTrainer_LabelOutOfRangeAbortsStep(t *testing.T) {
	model := fixedModel(t)
	trainer := newTrainer(t, model, 0.1, nil)
	before := mat.DenseCopyOf(model.Parameters()[0].Value())

	bad := fixedBatch()
	bad.Labels = []int{0, 5}
	_, err := trainer.Step(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, nn.ErrLabelOutOfRange))

	assert.Equal(t, train.Idle, trainer.State())
	assert.True(t, mat.Equal(before, model.Parameters()[0].Value()), "no update on a failed step")

	// The trainer is usable again.
	_, err = trainer.Step(fixedBatch())
	assert.NoError(t, err)
}

func TestTrainer_MismatchedBatch(t *testing.T) {
	trainer := newTrainer(t, fixedModel(t), 0.1, nil)

	_, err := trainer.Step(data.Batch{X: mat.NewDense(2, 4, nil), Labels: []int{0}})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))

	_, err = trainer.Step(data.Batch{X: mat.NewDense(1, 5, nil), Labels: []int{0}})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestTrainer_Fit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ds, err := data.Synthetic(64, 4, 2, 0.2, rng)
	require.NoError(t, err)
	loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 16})
	require.NoError(t, err)

	model, err := nn.NewMLP([]int{4, 8, 2}, rng)
	require.NoError(t, err)
	history := &train.History{}
	trainer := newTrainer(t, model, 0.5, history)

	reports, err := trainer.Fit(loader, 20)
	require.NoError(t, err)
	require.Len(t, reports, 20)
	assert.Equal(t, reports, history.Reports)

	for i, r := range reports {
		assert.Equal(t, i+1, r.Epoch)
		assert.Equal(t, 20, r.Epochs)
		assert.Equal(t, 4, r.Batches)
		assert.Equal(t, 64, r.Samples)
	}
	losses := history.Losses()
	assert.Less(t, losses[len(losses)-1], losses[0])
}

func TestTrainer_RunEpochMeanLoss(t *testing.T) {
	batches := data.StaticSource{fixedBatch(), fixedBatch()}

	// Replay the two steps on an identical model to get the per-batch losses.
	ref := newTrainer(t, fixedModel(t), 0.1, nil)
	l1, err := ref.Step(fixedBatch())
	require.NoError(t, err)
	l2, err := ref.Step(fixedBatch())
	require.NoError(t, err)

	trainer := newTrainer(t, fixedModel(t), 0.1, nil)
	report, err := trainer.RunEpoch(batches, 1)
	require.NoError(t, err)
	assert.InDelta(t, (l1+l2)/2, report.MeanLoss, 1e-12)
	assert.Equal(t, 2, report.Batches)
}

func TestTrainer_FitErrors(t *testing.T) {
	trainer := newTrainer(t, fixedModel(t), 0.1, nil)

	_, err := trainer.Fit(data.StaticSource{fixedBatch()}, 0)
	assert.Error(t, err)

	_, err = trainer.Fit(data.StaticSource{}, 1)
	assert.True(t, errors.Is(err, train.ErrEmptyEpoch))

	bad := fixedBatch()
	bad.Labels = []int{9, 9}
	reports, err := trainer.Fit(data.StaticSource{bad}, 3)
	assert.True(t, errors.Is(err, nn.ErrLabelOutOfRange))
	assert.Empty(t, reports)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := train.LogReporter{Logger: log.New(&buf, "", 0)}
	rep.ReportEpoch(train.EpochReport{Epoch: 2, Epochs: 5, MeanLoss: 0.5, Batches: 3, Samples: 90})

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "epoch=2/5 batches=3 samples=90 loss=0.5000"), line)
}

func TestMultiReporter(t *testing.T) {
	a, b := &train.History{}, &train.History{}
	train.Multi{a, b}.ReportEpoch(train.EpochReport{Epoch: 1, MeanLoss: 1.5})
	assert.Equal(t, []float64{1.5}, a.Losses())
	assert.Equal(t, []float64{1.5}, b.Losses())
}

func TestState_String(t *testing.T) {
	names := map[train.State]string{
		train.Idle:         "idle",
		train.ForwardPass:  "forward",
		train.LossComputed: "loss",
		train.BackwardPass: "backward",
		train.Updated:      "updated",
		train.State(42):    "unknown",
	}
	for s, want := range names {
		assert.Equal(t, want, s.String())
	}
}
