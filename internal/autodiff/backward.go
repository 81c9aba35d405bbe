package autodiff

import (
	"errors"
	"fmt"
)

// ErrNoGradientPath is returned by Grad when the output does not depend on
// any of the requested inputs. A circuit batch with no tracked parameters
// hits this: forward execution succeeds, differentiation has nothing to
// differentiate.
var ErrNoGradientPath = errors.New("autodiff: output does not depend on any input")

// Grad computes the gradient of a scalar output with respect to each of
// the given inputs using reverse-mode differentiation.
//
// The returned gradients are graph values: calling Grad on (a reduction
// of) them computes higher-order derivatives. Inputs that are reachable in
// the graph but receive no gradient get a zero value of their own length.
//
// Algorithm (reverse accumulation over a topological order):
//  1. Seed the output adjoint with 1.
//  2. Walk the operations in reverse topological order.
//  3. For each operation, zero-fill missing output adjoints, call its
//     Backward, and accumulate input adjoints with Add.
func Grad(y *Value, inputs []*Value) ([]*Value, error) {
	if y.Len() != 1 {
		return nil, fmt.Errorf("autodiff: Grad requires a scalar output, got length %d", y.Len())
	}

	order, reachable := topoSort(y)

	anyReachable := false
	for _, in := range inputs {
		if reachable[in] {
			anyReachable = true
			break
		}
	}
	if !anyReachable {
		return nil, ErrNoGradientPath
	}

	adjoints := make(map[*Value]*Value)
	adjoints[y] = Scalar(1)

	for i := len(order) - 1; i >= 0; i-- {
		op := order[i]
		outputs := op.Outputs()
		outGrads := make([]*Value, len(outputs))
		hasAny := false
		for j, out := range outputs {
			if g, ok := adjoints[out]; ok {
				outGrads[j] = g
				hasAny = true
			}
		}
		if !hasAny {
			continue
		}
		for j, out := range outputs {
			if outGrads[j] == nil {
				outGrads[j] = Leaf(make([]float64, out.Len()))
			}
		}
		inGrads, err := op.Backward(outGrads)
		if err != nil {
			return nil, err
		}
		for j, in := range op.Inputs() {
			if j >= len(inGrads) || inGrads[j] == nil {
				continue
			}
			if existing, ok := adjoints[in]; ok {
				adjoints[in] = Add(existing, inGrads[j])
			} else {
				adjoints[in] = inGrads[j]
			}
		}
	}

	grads := make([]*Value, len(inputs))
	for i, in := range inputs {
		if g, ok := adjoints[in]; ok {
			grads[i] = g
		} else {
			grads[i] = Leaf(make([]float64, in.Len()))
		}
	}
	return grads, nil
}

// topoSort returns the operations below y in topological order (inputs
// before outputs) together with the set of reachable values.
func topoSort(y *Value) ([]Operation, map[*Value]bool) {
	var order []Operation
	seenOps := make(map[Operation]bool)
	reachable := map[*Value]bool{y: true}

	var visit func(op Operation)
	visit = func(op Operation) {
		if op == nil || seenOps[op] {
			return
		}
		seenOps[op] = true
		for _, in := range op.Inputs() {
			reachable[in] = true
			visit(in.creator)
		}
		order = append(order, op)
	}
	visit(y.creator)
	return order, reachable
}
