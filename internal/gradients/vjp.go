package gradients

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/tape"
)

// VJPFromJacobian contracts an upstream gradient with a precomputed
// Jacobian: vjp_k = sum_i dy_i * J[i][k]. The Jacobian enters as plain
// constants, so derivatives of the result with respect to the circuit
// parameters vanish beyond first order; this is the classical path used
// for forward accumulation and device-native gradients.
//
// A nil or empty Jacobian (no trainable parameters) yields no components.
func VJPFromJacobian(dy *autodiff.Value, jac *mat.Dense) ([]*autodiff.Value, error) {
	if jac == nil {
		return nil, nil
	}
	rows, cols := jac.Dims()
	if cols == 0 {
		return nil, nil
	}
	if rows != dy.Len() {
		return nil, fmt.Errorf("gradients: Jacobian has %d rows, upstream gradient has %d elements", rows, dy.Len())
	}
	vjps := make([]*autodiff.Value, cols)
	for k := 0; k < cols; k++ {
		col := make([]float64, rows)
		mat.Col(col, k, jac)
		vjps[k] = autodiff.Dot(dy, autodiff.Leaf(col))
	}
	return vjps, nil
}

// BatchVJP generates the gradient tapes for a whole batch and returns a
// processing function that contracts the executed results with the
// per-tape upstream gradients dys, producing one VJP component per
// trainable parameter per tape.
//
// The processing function is differentiable when the transform is: this is
// the path the execution layer re-enters recursively for higher-order
// derivatives.
func BatchVJP(tapes []*tape.Tape, dys []*autodiff.Value, transform Transform) ([]*tape.Tape, func(results []*autodiff.Value) ([][]*autodiff.Value, error), error) {
	if len(tapes) != len(dys) {
		return nil, nil, fmt.Errorf("gradients: %d tapes but %d upstream gradients", len(tapes), len(dys))
	}

	var all []*tape.Tape
	counts := make([]int, len(tapes))
	processors := make([]Processor, len(tapes))
	for i, t := range tapes {
		gtapes, processor, err := transform(t)
		if err != nil {
			return nil, nil, err
		}
		counts[i] = len(gtapes)
		processors[i] = processor
		all = append(all, gtapes...)
	}

	fn := func(results []*autodiff.Value) ([][]*autodiff.Value, error) {
		if len(results) != len(all) {
			return nil, fmt.Errorf("gradients: expected %d gradient tape results, got %d", len(all), len(results))
		}
		vjps := make([][]*autodiff.Value, len(tapes))
		offset := 0
		for i := range tapes {
			cols, err := processors[i](results[offset : offset+counts[i]])
			if err != nil {
				return nil, err
			}
			offset += counts[i]
			components := make([]*autodiff.Value, len(cols))
			for k, col := range cols {
				components[k] = autodiff.Dot(dys[i], col)
			}
			vjps[i] = components
		}
		return vjps, nil
	}

	return all, fn, nil
}
