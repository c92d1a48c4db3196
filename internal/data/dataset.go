// Package data provides the batch types and in-memory data sources consumed by
// the training loop, plus readers for the MNIST IDX format and a synthetic
// generator for demos and tests.
package data

import (
	"math/rand"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Batch is one (inputs, labels) pair. Row i of X belongs to Labels[i].
type Batch struct {
	X      *mat.Dense // [batch_size, features]
	Labels []int      // [batch_size]
}

// Size returns the number of samples in the batch.
func (b Batch) Size() int {
	return len(b.Labels)
}

// Validate checks that rows and labels correspond one-to-one.
func (b Batch) Validate() error {
	if b.X == nil {
		return errors.Wrap(tensor.ErrShapeMismatch, "batch: nil inputs")
	}
	if rows, _ := b.X.Dims(); rows != len(b.Labels) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "batch: %d input rows for %d labels", rows, len(b.Labels))
	}
	return nil
}

// Source yields the batches of one epoch in the order they must be consumed.
//
// Batches is called once per epoch; a source may reorder samples between
// calls but must keep rows and labels paired.
type Source interface {
	Batches() ([]Batch, error)
}

// Dataset holds samples in memory.
type Dataset struct {
	Features [][]float64 // [num_samples][num_features]
	Labels   []int       // [num_samples]
}

// NewDataset validates that every sample has a label and the same width.
func NewDataset(features [][]float64, labels []int) (*Dataset, error) {
	if len(features) == 0 {
		return nil, errors.New("dataset: no samples")
	}
	if len(features) != len(labels) {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "dataset: %d samples, %d labels", len(features), len(labels))
	}
	width := len(features[0])
	for i, f := range features {
		if len(f) != width || width == 0 {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch, "dataset: sample %d has %d features, want %d", i, len(f), width)
		}
	}
	return &Dataset{Features: features, Labels: labels}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Features)
}

// NumFeatures returns the sample width.
func (d *Dataset) NumFeatures() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// NumClasses returns max(label)+1.
func (d *Dataset) NumClasses() int {
	n := 0
	for _, y := range d.Labels {
		if y+1 > n {
			n = y + 1
		}
	}
	return n
}

// Matrix returns all samples as one [num_samples, num_features] matrix.
func (d *Dataset) Matrix() *mat.Dense {
	return d.gather(identity(d.Len()))
}

// Batches splits the samples into batches of size, visiting them in the
// order given by indices (nil means dataset order). The last batch is
// smaller when the size does not divide the dataset, unless dropLast is set.
func (d *Dataset) Batches(size int, indices []int, dropLast bool) ([]Batch, error) {
	if size <= 0 {
		return nil, errors.Errorf("dataset: batch size must be > 0, got %d", size)
	}
	if indices == nil {
		indices = identity(d.Len())
	}

	batches := make([]Batch, 0, (len(indices)+size-1)/size)
	for start := 0; start < len(indices); start += size {
		end := start + size
		if end > len(indices) {
			if dropLast {
				break
			}
			end = len(indices)
		}
		idx := indices[start:end]
		labels := make([]int, len(idx))
		for j, k := range idx {
			labels[j] = d.Labels[k]
		}
		batches = append(batches, Batch{X: d.gather(idx), Labels: labels})
	}
	return batches, nil
}

// gather copies the samples at idx into a new matrix.
func (d *Dataset) gather(idx []int) *mat.Dense {
	width := d.NumFeatures()
	x := mat.NewDense(len(idx), width, nil)
	for j, k := range idx {
		x.SetRow(j, d.Features[k])
	}
	return x
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Loader is a Source over a Dataset with a fixed batch size.
//
// With a non-nil RNG every epoch visits samples in a fresh permutation; the
// permutation is applied to sample indices, so rows and labels move together.
type Loader struct {
	dataset   *Dataset
	batchSize int
	dropLast  bool
	rng       *rand.Rand
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BatchSize int
	DropLast  bool       // Skip a trailing partial batch
	Shuffle   *rand.Rand // nil keeps dataset order every epoch
}

// NewLoader creates a Loader.
func NewLoader(d *Dataset, cfg LoaderConfig) (*Loader, error) {
	if cfg.BatchSize <= 0 {
		return nil, errors.Errorf("loader: batch size must be > 0, got %d", cfg.BatchSize)
	}
	if d == nil || d.Len() == 0 {
		return nil, errors.New("loader: empty dataset")
	}
	return &Loader{
		dataset:   d,
		batchSize: cfg.BatchSize,
		dropLast:  cfg.DropLast,
		rng:       cfg.Shuffle,
	}, nil
}

// Batches returns the batches for one epoch.
func (l *Loader) Batches() ([]Batch, error) {
	var indices []int
	if l.rng != nil {
		indices = l.rng.Perm(l.dataset.Len())
	}
	return l.dataset.Batches(l.batchSize, indices, l.dropLast)
}

// StaticSource is a Source that yields the same batches every epoch.
type StaticSource []Batch

// Batches returns the fixed batches.
func (s StaticSource) Batches() ([]Batch, error) {
	return s, nil
}
