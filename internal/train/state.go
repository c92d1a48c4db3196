package train

import "github.com/pkg/errors"

// ErrInvalidTransition is returned when a training stage is invoked out of order.
var ErrInvalidTransition = errors.New("invalid training state transition")

// State is the position of a Trainer within one training step.
//
//	Idle → ForwardPass → LossComputed → BackwardPass → Updated → Idle
type State int

// Training step states.
const (
	Idle State = iota
	ForwardPass
	LossComputed
	BackwardPass
	Updated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ForwardPass:
		return "forward"
	case LossComputed:
		return "loss"
	case BackwardPass:
		return "backward"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// next returns the only state reachable from s.
func (s State) next() State {
	if s == Updated {
		return Idle
	}
	return s + 1
}
