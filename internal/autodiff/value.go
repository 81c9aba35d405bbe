// Package autodiff implements the host reverse-mode automatic
// differentiation engine.
//
// Unlike a classic tape that replays backward passes on raw buffers, the
// backward pass here is itself built from graph operations: every input
// gradient returned by an Operation is a *Value composed of other
// operations. Gradients are therefore differentiable again, which is what
// enables second- and higher-order derivatives through opaque primitives.
package autodiff

import "fmt"

// Value is a node in the computation graph: a vector of float64 data plus
// the operation that created it. Leaf values have no creator.
//
// Values are immutable after creation. Per-element lengths may differ
// across values (results of a circuit batch are ragged).
type Value struct {
	data    []float64
	creator Operation
}

// Leaf creates a leaf value from data. The slice is copied.
func Leaf(data []float64) *Value {
	d := make([]float64, len(data))
	copy(d, data)
	return &Value{data: d}
}

// Scalar creates a scalar (length-1) leaf value.
func Scalar(x float64) *Value {
	return &Value{data: []float64{x}}
}

// newValue creates a value owned by an operation. The data slice is
// adopted, not copied.
func newValue(data []float64, creator Operation) *Value {
	return &Value{data: data, creator: creator}
}

// Data returns a copy of the numeric data.
func (v *Value) Data() []float64 {
	out := make([]float64, len(v.data))
	copy(out, v.data)
	return out
}

// Len returns the number of elements.
func (v *Value) Len() int {
	return len(v.data)
}

// At returns the i-th element as a plain number.
func (v *Value) At(i int) float64 {
	return v.data[i]
}

// Unbox returns the plain numeric value of a scalar. It satisfies the
// tape parameter contract, letting tapes substitute tracked parameters
// with concrete numbers for device execution.
func (v *Value) Unbox() float64 {
	if len(v.data) != 1 {
		panic(fmt.Sprintf("autodiff: Unbox on non-scalar value of length %d", len(v.data)))
	}
	return v.data[0]
}

// Detach returns a leaf value with the same data and no graph history.
// Gradients do not flow through a detached value.
func (v *Value) Detach() *Value {
	return Leaf(v.data)
}

// IsLeaf reports whether the value has no creator.
func (v *Value) IsLeaf() bool {
	return v.creator == nil
}
