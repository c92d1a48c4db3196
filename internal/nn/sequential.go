package nn

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sequential is the model: an ordered stack of layers where each layer's
// output becomes the next layer's input.
//
// Widths are checked once, in NewSequential: the output width of layer i
// must equal the input width of the next layer that declares one.
//
// Example:
//
//	fc1, _ := nn.NewLinear("fc1", 784, 128, rng)
//	fc2, _ := nn.NewLinear("fc2", 128, 10, rng)
//	model, err := nn.NewSequential(fc1, nn.NewReLU(), fc2)
type Sequential struct {
	layers      []Layer
	inFeatures  int
	outFeatures int
}

// NewSequential creates a model from layers, validating that consecutive
// widths agree. At least one Linear layer is required so that the input
// and output widths are known.
func NewSequential(layers ...Layer) (*Sequential, error) {
	width := 0
	in := 0
	for i, l := range layers {
		if want := l.InFeatures(); want > 0 {
			if width > 0 && width != want {
				return nil, errors.Wrapf(tensor.ErrShapeMismatch,
					"layer %d (%s) expects %d inputs, previous layer produces %d", i, l, want, width)
			}
			if in == 0 {
				in = want
			}
		}
		if out := l.OutFeatures(); out > 0 {
			width = out
		}
	}
	if in == 0 || width == 0 {
		return nil, errors.Wrap(tensor.ErrShapeMismatch, "model needs at least one Linear layer")
	}

	return &Sequential{
		layers:      layers,
		inFeatures:  in,
		outFeatures: width,
	}, nil
}

// NewMLP builds a multi-layer perceptron from layer sizes, e.g.
// []int{784, 128, 10} gives Linear(784→128), ReLU, Linear(128→10).
//
// There is no activation after the last Linear; it emits raw scores.
func NewMLP(sizes []int, rng *rand.Rand) (*Sequential, error) {
	if len(sizes) < 2 {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "mlp needs at least 2 sizes, got %v", sizes)
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, errors.Wrapf(tensor.ErrShapeMismatch, "mlp size %d at index %d must be > 0", s, i)
		}
	}

	layers := make([]Layer, 0, 2*len(sizes)-3)
	for i := 0; i < len(sizes)-1; i++ {
		if i > 0 {
			layers = append(layers, NewReLU())
		}
		l, err := NewLinear(fmt.Sprintf("fc%d", i+1), sizes[i], sizes[i+1], rng)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return NewSequential(layers...)
}

// Forward runs the model on x and returns raw class scores together with a
// fresh tape holding every activation record of this pass.
func (s *Sequential) Forward(x mat.Matrix) (mat.Matrix, *autodiff.GradientTape, error) {
	tape := autodiff.NewGradientTape()
	scores, err := s.ForwardOn(tape, x)
	if err != nil {
		return nil, nil, err
	}
	return scores, tape, nil
}

// ForwardOn runs the model on x, recording onto tape. A nil tape disables
// recording (inference only).
func (s *Sequential) ForwardOn(tape *autodiff.GradientTape, x mat.Matrix) (mat.Matrix, error) {
	if _, cols := x.Dims(); cols != s.inFeatures {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"model expects input with %d features, got %d", s.inFeatures, cols)
	}

	out := x
	for i, l := range s.layers {
		next, err := l.Forward(tape, out)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d (%s)", i, l)
		}
		out = next
	}
	return out, nil
}

// Predict returns the highest-scoring class for every row of x.
// Nothing is recorded.
func (s *Sequential) Predict(x mat.Matrix) ([]int, error) {
	scores, err := s.ForwardOn(nil, x)
	if err != nil {
		return nil, err
	}
	rows, cols := scores.Dims()
	classes := make([]int, rows)
	row := make([]float64, cols)
	for i := range classes {
		mat.Row(row, i, scores)
		classes[i] = floats.MaxIdx(row)
	}
	return classes, nil
}

// Accuracy returns the fraction of rows of x whose predicted class equals
// the corresponding label.
func (s *Sequential) Accuracy(x mat.Matrix, labels []int) (float64, error) {
	pred, err := s.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(labels) {
		return 0, errors.Wrapf(tensor.ErrShapeMismatch, "accuracy: %d labels for %d rows", len(labels), len(pred))
	}
	correct := 0
	for i, p := range pred {
		if p == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(pred)), nil
}

// Parameters returns all trainable parameters in layer order.
func (s *Sequential) Parameters() []*tensor.Parameter {
	var params []*tensor.Parameter
	for _, l := range s.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// NumParameters returns the total number of scalar parameters.
func (s *Sequential) NumParameters() int {
	n := 0
	for _, p := range s.Parameters() {
		n += p.NumElements()
	}
	return n
}

// Layers returns the layer stack.
func (s *Sequential) Layers() []Layer {
	return s.layers
}

// InFeatures returns the model input width.
func (s *Sequential) InFeatures() int {
	return s.inFeatures
}

// NumClasses returns the width of the score output.
func (s *Sequential) NumClasses() int {
	return s.outFeatures
}

func (s *Sequential) String() string {
	parts := make([]string, len(s.layers))
	for i, l := range s.layers {
		parts[i] = l.String()
	}
	return strings.Join(parts, " → ")
}
