package gradients

import (
	"fmt"
	"math"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/tape"
)

// ParamShift is the two-term parameter-shift rule for gates generated by
// operators with eigenvalue gap 1 (Pauli rotations, PhaseShift):
//
//	df/dtheta = (f(theta + pi/2) - f(theta - pi/2)) / 2
//
// Expectation values and probabilities are differentiated directly.
// Variances of Pauli words use Var(P) = 1 - <P>^2, so
// dVar/dtheta = -2 <P> d<P>/dtheta; the transform adds one unshifted
// expectation tape to obtain <P>.
//
// The rule is exact, and the processing arithmetic is differentiable, so
// ParamShift composes with itself for higher-order derivatives.
func ParamShift(t *tape.Tape) ([]*tape.Tape, Processor, error) {
	expanded := t.Expand()
	if err := validateShiftable(expanded); err != nil {
		return nil, nil, err
	}

	hasVar := false
	for _, m := range expanded.Measurements {
		if m.Kind == tape.Var {
			hasVar = true
		}
	}

	// Shifted tapes measure the expval form; for Var terminals the result
	// layout is unchanged (both are scalar terminals).
	base := expvalized(expanded)

	var gtapes []*tape.Tape
	if hasVar {
		unshifted, err := base.Copy(nil)
		if err != nil {
			return nil, nil, err
		}
		gtapes = append(gtapes, unshifted)
	}

	numTrainable := base.NumTrainable()
	for k := 0; k < numTrainable; k++ {
		plus, err := shiftedCopy(base, k, math.Pi/2)
		if err != nil {
			return nil, nil, err
		}
		minus, err := shiftedCopy(base, k, -math.Pi/2)
		if err != nil {
			return nil, nil, err
		}
		gtapes = append(gtapes, plus, minus)
	}

	varMask, otherMask := varianceMasks(expanded)

	processor := func(results []*autodiff.Value) ([]*autodiff.Value, error) {
		want := 2 * numTrainable
		if hasVar {
			want++
		}
		if len(results) != want {
			return nil, fmt.Errorf("gradients: expected %d gradient tape results, got %d", want, len(results))
		}
		var factor *autodiff.Value
		offset := 0
		if hasVar {
			// factor row-wise: -2<P> on variance rows, 1 elsewhere.
			e := results[0]
			factor = autodiff.Add(autodiff.Mul(varMask, autodiff.Scale(e, -2)), otherMask)
			offset = 1
		}
		cols := make([]*autodiff.Value, numTrainable)
		for k := 0; k < numTrainable; k++ {
			plus := results[offset+2*k]
			minus := results[offset+2*k+1]
			col := autodiff.Scale(autodiff.Sub(plus, minus), 0.5)
			if factor != nil {
				col = autodiff.Mul(col, factor)
			}
			cols[k] = col
		}
		return cols, nil
	}

	return gtapes, processor, nil
}

// validateShiftable checks that every trainable parameter sits on a gate
// covered by the two-term rule.
func validateShiftable(t *tape.Tape) error {
	idx := 0
	for _, op := range t.Operations {
		for range op.Params {
			trainable := false
			for _, ti := range t.TrainableParams() {
				if ti == idx {
					trainable = true
					break
				}
			}
			if trainable {
				switch op.Name {
				case "RX", "RY", "RZ", "PhaseShift":
				default:
					return fmt.Errorf("gradients: parameter-shift rule does not apply to gate %q", op.Name)
				}
			}
			idx++
		}
	}
	return nil
}

// expvalized returns a tape with every Var terminal replaced by Expval.
// Flat result layout is unchanged: both terminals are scalars.
func expvalized(t *tape.Tape) *tape.Tape {
	changed := false
	for _, m := range t.Measurements {
		if m.Kind == tape.Var {
			changed = true
		}
	}
	if !changed {
		return t
	}
	out, _ := t.Copy(nil)
	for i, m := range out.Measurements {
		if m.Kind == tape.Var {
			out.Measurements[i] = tape.Measurement{Kind: tape.Expval, Observable: m.Observable}
		}
	}
	return out
}

// varianceMasks returns constant row masks over the tape's flat output:
// varMask is 1 on variance rows, otherMask is 1 everywhere else.
func varianceMasks(t *tape.Tape) (varMask, otherMask *autodiff.Value) {
	dim := t.OutputDim()
	v := make([]float64, dim)
	o := make([]float64, dim)
	row := 0
	for _, m := range t.Measurements {
		for i := 0; i < m.Dim(); i++ {
			if m.Kind == tape.Var {
				v[row] = 1
			} else {
				o[row] = 1
			}
			row++
		}
	}
	return autodiff.Leaf(v), autodiff.Leaf(o)
}
