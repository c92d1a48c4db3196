// Package train drives the forward → loss → backward → update cycle over
// a data source for a fixed number of epochs.
package train

import (
	"time"

	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/data"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyEpoch is returned when a data source yields no batches.
var ErrEmptyEpoch = errors.New("data source yielded no batches")

// Trainer runs training steps for one model and optimizer.
//
// A step is a strict sequence of stages; each stage method checks that the
// trainer is in the state that precedes it:
//
//	t.Forward(batch)   // Idle → ForwardPass
//	t.ComputeLoss()    // ForwardPass → LossComputed
//	t.Backward()       // LossComputed → BackwardPass
//	t.Update()         // BackwardPass → Updated
//	t.Finish()         // Updated → Idle, gradients cleared
//
// Step runs all five. A failing stage aborts the step: the tape is dropped,
// gradients are cleared and the trainer returns to Idle.
type Trainer struct {
	model     *nn.Sequential
	optimizer optim.Optimizer
	reporter  Reporter

	state  State
	batch  data.Batch
	tape   *autodiff.GradientTape
	scores mat.Matrix
	loss   float64
}

// New creates a Trainer. A nil reporter discards epoch reports.
//
// Gradients are cleared on construction so that the trainer starts Idle
// with zeroed buffers.
func New(model *nn.Sequential, optimizer optim.Optimizer, reporter Reporter) *Trainer {
	if reporter == nil {
		reporter = ReporterFunc(func(EpochReport) {})
	}
	optimizer.ZeroGrad()
	return &Trainer{
		model:     model,
		optimizer: optimizer,
		reporter:  reporter,
		state:     Idle,
	}
}

// State returns the current stage.
func (t *Trainer) State() State {
	return t.state
}

// Loss returns the loss computed in the current or most recent step.
func (t *Trainer) Loss() float64 {
	return t.loss
}

// Forward runs the model on batch.X, recording a fresh tape.
func (t *Trainer) Forward(batch data.Batch) error {
	if err := t.expect(Idle, "forward"); err != nil {
		return err
	}
	if err := batch.Validate(); err != nil {
		return t.abort(err)
	}
	scores, tape, err := t.model.Forward(batch.X)
	if err != nil {
		return t.abort(errors.Wrap(err, "forward"))
	}
	t.batch, t.tape, t.scores = batch, tape, scores
	t.advance()
	return nil
}

// ComputeLoss records cross-entropy of the scores against the batch labels.
func (t *Trainer) ComputeLoss() (float64, error) {
	if err := t.expect(ForwardPass, "compute loss"); err != nil {
		return 0, err
	}
	loss, err := nn.CrossEntropy(t.tape, t.scores, t.batch.Labels)
	if err != nil {
		return 0, t.abort(errors.Wrap(err, "loss"))
	}
	t.loss = loss
	t.advance()
	return loss, nil
}

// Backward propagates the loss gradient into the parameter gradient buffers.
func (t *Trainer) Backward() error {
	if err := t.expect(LossComputed, "backward"); err != nil {
		return err
	}
	if err := autodiff.BackwardLoss(t.tape); err != nil {
		return t.abort(err)
	}
	t.tape, t.scores = nil, nil
	t.advance()
	return nil
}

// Update applies one optimizer step.
func (t *Trainer) Update() error {
	if err := t.expect(BackwardPass, "update"); err != nil {
		return err
	}
	if err := t.optimizer.Step(); err != nil {
		return t.abort(err)
	}
	t.advance()
	return nil
}

// Finish clears gradients and returns to Idle.
func (t *Trainer) Finish() error {
	if err := t.expect(Updated, "finish"); err != nil {
		return err
	}
	t.optimizer.ZeroGrad()
	t.batch = data.Batch{}
	t.advance()
	return nil
}

// Step runs one full training step on batch and returns its loss
// (computed before the update).
func (t *Trainer) Step(batch data.Batch) (float64, error) {
	if err := t.Forward(batch); err != nil {
		return 0, err
	}
	loss, err := t.ComputeLoss()
	if err != nil {
		return 0, err
	}
	if err := t.Backward(); err != nil {
		return 0, err
	}
	if err := t.Update(); err != nil {
		return 0, err
	}
	if err := t.Finish(); err != nil {
		return 0, err
	}
	return loss, nil
}

// Fit trains for epochs passes over source. Each epoch consumes every batch
// in the order the source yields them and reports the mean batch loss.
//
// The first error halts training; the reports of completed epochs are
// returned alongside it.
func (t *Trainer) Fit(source data.Source, epochs int) ([]EpochReport, error) {
	if epochs <= 0 {
		return nil, errors.Errorf("fit: epochs must be > 0, got %d", epochs)
	}

	reports := make([]EpochReport, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		report, err := t.RunEpoch(source, epoch)
		if err != nil {
			return reports, err
		}
		report.Epochs = epochs
		t.reporter.ReportEpoch(report)
		reports = append(reports, report)
	}
	return reports, nil
}

// RunEpoch performs one pass over source without reporting it.
func (t *Trainer) RunEpoch(source data.Source, epoch int) (EpochReport, error) {
	start := time.Now()
	batches, err := source.Batches()
	if err != nil {
		return EpochReport{}, errors.Wrapf(err, "epoch %d: load batches", epoch)
	}
	if len(batches) == 0 {
		return EpochReport{}, errors.Wrapf(ErrEmptyEpoch, "epoch %d", epoch)
	}

	losses := make([]float64, len(batches))
	samples := 0
	for i, b := range batches {
		loss, err := t.Step(b)
		if err != nil {
			return EpochReport{}, errors.Wrapf(err, "epoch %d batch %d", epoch, i)
		}
		losses[i] = loss
		samples += b.Size()
	}

	return EpochReport{
		Epoch:    epoch,
		MeanLoss: stat.Mean(losses, nil),
		Batches:  len(batches),
		Samples:  samples,
		Duration: time.Since(start),
	}, nil
}

func (t *Trainer) expect(want State, stage string) error {
	if t.state != want {
		return errors.Wrapf(ErrInvalidTransition, "%s: trainer is %s, want %s", stage, t.state, want)
	}
	return nil
}

func (t *Trainer) advance() {
	t.state = t.state.next()
}

// abort drops the in-flight step and returns err.
func (t *Trainer) abort(err error) error {
	t.tape, t.scores = nil, nil
	t.batch = data.Batch{}
	t.optimizer.ZeroGrad()
	t.state = Idle
	return err
}
