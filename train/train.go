// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs the forward → loss → backward → update cycle.
//
//	trainer := train.New(model, optimizer, train.LogReporter{})
//	reports, err := trainer.Fit(source, 10)
package train

import (
	"github.com/born-ml/backprop/internal/data"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/born-ml/backprop/internal/train"
)

// Trainer drives training steps for one model.
type Trainer = train.Trainer

// State is the stage of the current training step.
type State = train.State

// Training step states.
const (
	Idle         = train.Idle
	ForwardPass  = train.ForwardPass
	LossComputed = train.LossComputed
	BackwardPass = train.BackwardPass
	Updated      = train.Updated
)

// EpochReport summarizes one epoch.
type EpochReport = train.EpochReport

// Reporter receives per-epoch results.
type Reporter = train.Reporter

// LogReporter logs one line per epoch.
type LogReporter = train.LogReporter

// History keeps every report in memory.
type History = train.History

// Batch is one (inputs, labels) pair.
type Batch = data.Batch

// Source yields the batches of an epoch.
type Source = data.Source

// StaticSource yields the same batches every epoch.
type StaticSource = data.StaticSource

// Training errors.
var (
	ErrInvalidTransition = train.ErrInvalidTransition
	ErrEmptyEpoch        = train.ErrEmptyEpoch
)

// New creates a Trainer. A nil reporter discards reports.
func New(model *nn.Sequential, optimizer optim.Optimizer, reporter Reporter) *Trainer {
	return train.New(model, optimizer, reporter)
}
