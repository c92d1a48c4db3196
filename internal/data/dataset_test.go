package data_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/backprop/internal/data"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// tagged returns n samples whose single feature equals their label, so that
// row/label pairing can be checked after any reordering.
func tagged(t *testing.T, n int) *data.Dataset {
	t.Helper()
	xs := make([][]float64, n)
	ys := make([]int, n)
	for i := range xs {
		xs[i] = []float64{float64(i), float64(-i)}
		ys[i] = i
	}
	ds, err := data.NewDataset(xs, ys)
	require.NoError(t, err)
	return ds
}

func TestBatch_Validate(t *testing.T) {
	ok := data.Batch{X: mat.NewDense(2, 3, nil), Labels: []int{0, 1}}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, 2, ok.Size())

	short := data.Batch{X: mat.NewDense(2, 3, nil), Labels: []int{0}}
	assert.True(t, errors.Is(short.Validate(), tensor.ErrShapeMismatch))

	assert.True(t, errors.Is(data.Batch{}.Validate(), tensor.ErrShapeMismatch))
}

func TestNewDataset_Errors(t *testing.T) {
	_, err := data.NewDataset(nil, nil)
	assert.Error(t, err)

	_, err = data.NewDataset([][]float64{{1}, {2}}, []int{0})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))

	_, err = data.NewDataset([][]float64{{1, 2}, {3}}, []int{0, 1})
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestDataset_Batches(t *testing.T) {
	ds := tagged(t, 10)

	batches, err := ds.Batches(4, nil, false)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, batches[0].Labels)
	assert.Equal(t, []int{8, 9}, batches[2].Labels)
	assert.Equal(t, 9.0, batches[2].X.At(1, 0))

	dropped, err := ds.Batches(4, nil, true)
	require.NoError(t, err)
	assert.Len(t, dropped, 2)

	_, err = ds.Batches(0, nil, false)
	assert.Error(t, err)
}

func TestDataset_Metadata(t *testing.T) {
	ds := tagged(t, 5)
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, 2, ds.NumFeatures())
	assert.Equal(t, 5, ds.NumClasses())

	m := ds.Matrix()
	r, c := m.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, -3.0, m.At(3, 1))
}

func TestLoader_ShuffleKeepsPairs(t *testing.T) {
	ds := tagged(t, 37)
	loader, err := data.NewLoader(ds, data.LoaderConfig{
		BatchSize: 8,
		Shuffle:   rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)

	first, err := loader.Batches()
	require.NoError(t, err)
	second, err := loader.Batches()
	require.NoError(t, err)

	seen := make(map[int]bool)
	var order1, order2 []int
	for _, b := range first {
		require.NoError(t, b.Validate())
		for i, y := range b.Labels {
			assert.Equal(t, float64(y), b.X.At(i, 0), "row %d moved without its label", i)
			assert.Equal(t, -float64(y), b.X.At(i, 1))
			seen[y] = true
			order1 = append(order1, y)
		}
	}
	for _, b := range second {
		order2 = append(order2, b.Labels...)
	}
	assert.Len(t, seen, 37, "every sample visited once")
	assert.NotEqual(t, order1, order2, "each epoch draws a fresh permutation")
}

func TestLoader_Config(t *testing.T) {
	ds := tagged(t, 10)

	_, err := data.NewLoader(ds, data.LoaderConfig{})
	assert.Error(t, err)
	_, err = data.NewLoader(nil, data.LoaderConfig{BatchSize: 2})
	assert.Error(t, err)

	loader, err := data.NewLoader(ds, data.LoaderConfig{BatchSize: 3, DropLast: true})
	require.NoError(t, err)
	batches, err := loader.Batches()
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 1, 2}, batches[0].Labels)
}

func TestStaticSource(t *testing.T) {
	b := data.Batch{X: mat.NewDense(1, 1, []float64{1}), Labels: []int{0}}
	src := data.StaticSource{b, b}
	batches, err := src.Batches()
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}

func TestSynthetic(t *testing.T) {
	ds, err := data.Synthetic(30, 5, 3, 0.1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 30, ds.Len())
	assert.Equal(t, 5, ds.NumFeatures())
	assert.Equal(t, 3, ds.NumClasses())
	assert.Equal(t, []int{0, 1, 2}, ds.Labels[:3])

	again, err := data.Synthetic(30, 5, 3, 0.1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, ds.Features, again.Features, "same seed, same samples")

	_, err = data.Synthetic(10, 0, 3, 0.1, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}
