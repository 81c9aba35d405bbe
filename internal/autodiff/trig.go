package autodiff

import "math"

// SinOp represents the sine operation: y = sin(x).
//
// Backward pass:
//   - d(sin(x))/dx = cos(x)
//   - grad_input = grad_output * cos(input)
type SinOp struct {
	inputs  []*Value
	outputs []*Value
}

// Sin computes the element-wise sine.
func Sin(x *Value) *Value {
	data := make([]float64, x.Len())
	for i, v := range x.data {
		data[i] = math.Sin(v)
	}
	op := &SinOp{inputs: []*Value{x}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *SinOp) Inputs() []*Value  { return op.inputs }
func (op *SinOp) Outputs() []*Value { return op.outputs }

func (op *SinOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Mul(outputGrads[0], Cos(op.inputs[0]))}, nil
}

// CosOp represents the cosine operation: y = cos(x).
//
// Backward pass:
//   - d(cos(x))/dx = -sin(x)
type CosOp struct {
	inputs  []*Value
	outputs []*Value
}

// Cos computes the element-wise cosine.
func Cos(x *Value) *Value {
	data := make([]float64, x.Len())
	for i, v := range x.data {
		data[i] = math.Cos(v)
	}
	op := &CosOp{inputs: []*Value{x}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *CosOp) Inputs() []*Value  { return op.inputs }
func (op *CosOp) Outputs() []*Value { return op.outputs }

func (op *CosOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Neg(Mul(outputGrads[0], Sin(op.inputs[0])))}, nil
}
