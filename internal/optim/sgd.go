package optim

import (
	"math"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
)

// defaultLR is used when SGDConfig.LR is zero.
const defaultLR = 0.01

// SGD implements Stochastic Gradient Descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// Example:
//
//	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
type SGD struct {
	params []*tensor.Parameter
	lr     float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR float64 // Learning rate (default: 0.01)
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*tensor.Parameter, config SGDConfig) (*SGD, error) {
	if config.LR == 0 {
		config.LR = defaultLR
	}
	s := &SGD{params: params}
	if err := s.SetLR(config.LR); err != nil {
		return nil, err
	}
	return s, nil
}

// Step performs param ← param − lr·grad for every parameter.
//
// Fails with tensor.ErrNonFinite if an update produces NaN or Inf; the
// parameters updated before the failing one keep their new values.
func (s *SGD) Step() error {
	for _, p := range s.params {
		if err := p.ApplyUpdate(s.lr); err != nil {
			return errors.Wrap(err, "sgd step")
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) error {
	if lr < 0 || math.IsNaN(lr) || math.IsInf(lr, 0) {
		return errors.Wrapf(ErrInvalidLR, "lr=%v", lr)
	}
	s.lr = lr
	return nil
}

// Parameters returns the parameters being optimized.
func (s *SGD) Parameters() []*tensor.Parameter {
	return s.params
}
