package autodiff

import "fmt"

// elementwise pairs up two values, broadcasting a scalar against a vector.
// Returns the output length.
func elementwiseLen(a, b *Value) int {
	switch {
	case len(a.data) == len(b.data):
		return len(a.data)
	case len(a.data) == 1:
		return len(b.data)
	case len(b.data) == 1:
		return len(a.data)
	default:
		panic(fmt.Sprintf("autodiff: length mismatch %d vs %d", len(a.data), len(b.data)))
	}
}

func pick(v *Value, i int) float64 {
	if len(v.data) == 1 {
		return v.data[0]
	}
	return v.data[i]
}

// reduceTo reduces a gradient to the length of the corresponding input.
// A broadcast scalar input accumulates the whole gradient (sum over the
// broadcast dimension).
func reduceTo(g *Value, n int) *Value {
	if g.Len() == n {
		return g
	}
	if n == 1 {
		return Sum(g)
	}
	panic(fmt.Sprintf("autodiff: cannot reduce gradient of length %d to %d", g.Len(), n))
}

// AddOp represents element-wise addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
type AddOp struct {
	inputs  []*Value // [a, b]
	outputs []*Value // [a + b]
}

// Add performs element-wise addition. A scalar operand broadcasts against
// a vector operand.
func Add(a, b *Value) *Value {
	n := elementwiseLen(a, b)
	data := make([]float64, n)
	for i := range data {
		data[i] = pick(a, i) + pick(b, i)
	}
	op := &AddOp{inputs: []*Value{a, b}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *AddOp) Inputs() []*Value  { return op.inputs }
func (op *AddOp) Outputs() []*Value { return op.outputs }

// Backward flows the output gradient equally to both inputs, reducing over
// any broadcast.
func (op *AddOp) Backward(outputGrads []*Value) ([]*Value, error) {
	g := outputGrads[0]
	return []*Value{
		reduceTo(g, op.inputs[0].Len()),
		reduceTo(g, op.inputs[1].Len()),
	}, nil
}

// SubOp represents element-wise subtraction: output = a - b.
type SubOp struct {
	inputs  []*Value
	outputs []*Value
}

// Sub performs element-wise subtraction with scalar broadcasting.
func Sub(a, b *Value) *Value {
	n := elementwiseLen(a, b)
	data := make([]float64, n)
	for i := range data {
		data[i] = pick(a, i) - pick(b, i)
	}
	op := &SubOp{inputs: []*Value{a, b}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *SubOp) Inputs() []*Value  { return op.inputs }
func (op *SubOp) Outputs() []*Value { return op.outputs }

func (op *SubOp) Backward(outputGrads []*Value) ([]*Value, error) {
	g := outputGrads[0]
	return []*Value{
		reduceTo(g, op.inputs[0].Len()),
		reduceTo(Neg(g), op.inputs[1].Len()),
	}, nil
}

// NegOp represents negation: output = -x.
type NegOp struct {
	inputs  []*Value
	outputs []*Value
}

// Neg negates a value element-wise.
func Neg(x *Value) *Value {
	data := make([]float64, x.Len())
	for i, v := range x.data {
		data[i] = -v
	}
	op := &NegOp{inputs: []*Value{x}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *NegOp) Inputs() []*Value  { return op.inputs }
func (op *NegOp) Outputs() []*Value { return op.outputs }

func (op *NegOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Neg(outputGrads[0])}, nil
}

// OffsetOp represents addition of a constant: output = x + c.
// The constant carries no gradient.
type OffsetOp struct {
	inputs  []*Value
	outputs []*Value
}

// Offset adds a plain constant element-wise.
func Offset(x *Value, c float64) *Value {
	data := make([]float64, x.Len())
	for i, v := range x.data {
		data[i] = v + c
	}
	op := &OffsetOp{inputs: []*Value{x}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *OffsetOp) Inputs() []*Value  { return op.inputs }
func (op *OffsetOp) Outputs() []*Value { return op.outputs }

func (op *OffsetOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{outputGrads[0]}, nil
}
