package autodiff

import "fmt"

// TakeOp extracts a single element from a vector as a scalar.
type TakeOp struct {
	inputs  []*Value
	outputs []*Value
	index   int
}

// Take returns the i-th element of a vector as a scalar value.
func Take(x *Value, i int) *Value {
	if i < 0 || i >= x.Len() {
		panic(fmt.Sprintf("autodiff: Take index %d out of range [0, %d)", i, x.Len()))
	}
	op := &TakeOp{inputs: []*Value{x}, index: i}
	out := newValue([]float64{x.data[i]}, op)
	op.outputs = []*Value{out}
	return out
}

func (op *TakeOp) Inputs() []*Value  { return op.inputs }
func (op *TakeOp) Outputs() []*Value { return op.outputs }

// Backward scatters the scalar upstream gradient back into a zero vector
// at the taken index.
func (op *TakeOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Scatter(outputGrads[0], op.index, op.inputs[0].Len())}, nil
}

// ScatterOp embeds a scalar into a zero vector of length n at one index.
type ScatterOp struct {
	inputs  []*Value
	outputs []*Value
	index   int
}

// Scatter returns a vector of length n that is zero everywhere except at
// index i, where it carries the scalar x.
func Scatter(x *Value, i, n int) *Value {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("autodiff: Scatter index %d out of range [0, %d)", i, n))
	}
	data := make([]float64, n)
	data[i] = x.Unbox()
	op := &ScatterOp{inputs: []*Value{x}, index: i}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *ScatterOp) Inputs() []*Value  { return op.inputs }
func (op *ScatterOp) Outputs() []*Value { return op.outputs }

func (op *ScatterOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Take(outputGrads[0], op.index)}, nil
}
