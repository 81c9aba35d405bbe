// Package gradients implements quantum gradient procedures: differentiable
// gradient transforms (parameter shift, finite differences) and classical
// vector-Jacobian-product helpers.
//
// A Transform maps one tape to a batch of gradient tapes plus a processing
// function. The processing function combines the executed gradient-tape
// results into per-parameter derivative columns. Both the generated tape
// parameters and the processing arithmetic are built from autodiff values,
// so differentiating through a transform is possible: that composability
// is what the execution layer exploits for higher-order derivatives.
package gradients

import (
	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/tape"
)

// Processor combines executed gradient-tape results into derivative
// columns: one value per trainable parameter of the original tape, each of
// the original tape's flat output length.
type Processor func(results []*autodiff.Value) ([]*autodiff.Value, error)

// Transform generates the gradient tapes for a single tape. The returned
// tapes must be executed in order and their results handed to the
// processor.
type Transform func(t *tape.Tape) ([]*tape.Tape, Processor, error)

// shiftParam returns the parameter shifted by delta. A graph-tracking
// parameter stays tracked: the shift is applied as a graph operation so
// that derivatives flow through the generated tapes.
func shiftParam(p tape.Number, delta float64) tape.Number {
	if v, ok := p.(*autodiff.Value); ok {
		return autodiff.Offset(v, delta)
	}
	return tape.Float(p) + delta
}

// shiftedCopy copies t with trainable parameter k shifted by delta.
func shiftedCopy(t *tape.Tape, k int, delta float64) (*tape.Tape, error) {
	params := t.GetParameters(true)
	shifted := make([]tape.Number, len(params))
	copy(shifted, params)
	shifted[k] = shiftParam(params[k], delta)
	return t.Copy(shifted)
}
