package gradients

import (
	"fmt"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/tape"
)

// DefaultStep is the finite-difference step size.
const DefaultStep = 1e-7

// FiniteDiff is the central-difference gradient transform:
//
//	df/dtheta ~ (f(theta + h) - f(theta - h)) / (2h)
//
// It applies to any gate and measurement, at the cost of O(h^2) truncation
// error. Like ParamShift, the generated tape parameters and the processing
// arithmetic stay on the graph, so the transform is differentiable.
func FiniteDiff(step float64) Transform {
	if step <= 0 {
		step = DefaultStep
	}
	return func(t *tape.Tape) ([]*tape.Tape, Processor, error) {
		numTrainable := t.NumTrainable()
		var gtapes []*tape.Tape
		for k := 0; k < numTrainable; k++ {
			plus, err := shiftedCopy(t, k, step)
			if err != nil {
				return nil, nil, err
			}
			minus, err := shiftedCopy(t, k, -step)
			if err != nil {
				return nil, nil, err
			}
			gtapes = append(gtapes, plus, minus)
		}

		processor := func(results []*autodiff.Value) ([]*autodiff.Value, error) {
			if len(results) != 2*numTrainable {
				return nil, fmt.Errorf("gradients: expected %d gradient tape results, got %d", 2*numTrainable, len(results))
			}
			cols := make([]*autodiff.Value, numTrainable)
			for k := 0; k < numTrainable; k++ {
				diff := autodiff.Sub(results[2*k], results[2*k+1])
				cols[k] = autodiff.Scale(diff, 1/(2*step))
			}
			return cols, nil
		}

		return gtapes, processor, nil
	}
}
