package autodiff

// MulOp represents element-wise multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
type MulOp struct {
	inputs  []*Value
	outputs []*Value
}

// Mul performs element-wise multiplication with scalar broadcasting.
func Mul(a, b *Value) *Value {
	n := elementwiseLen(a, b)
	data := make([]float64, n)
	for i := range data {
		data[i] = pick(a, i) * pick(b, i)
	}
	op := &MulOp{inputs: []*Value{a, b}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *MulOp) Inputs() []*Value  { return op.inputs }
func (op *MulOp) Outputs() []*Value { return op.outputs }

func (op *MulOp) Backward(outputGrads []*Value) ([]*Value, error) {
	g := outputGrads[0]
	a, b := op.inputs[0], op.inputs[1]
	return []*Value{
		reduceTo(Mul(g, b), a.Len()),
		reduceTo(Mul(g, a), b.Len()),
	}, nil
}

// ScaleOp represents multiplication by a plain constant: output = c * x.
type ScaleOp struct {
	inputs  []*Value
	outputs []*Value
	c       float64
}

// Scale multiplies a value by a plain constant.
func Scale(x *Value, c float64) *Value {
	data := make([]float64, x.Len())
	for i, v := range x.data {
		data[i] = c * v
	}
	op := &ScaleOp{inputs: []*Value{x}, c: c}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *ScaleOp) Inputs() []*Value  { return op.inputs }
func (op *ScaleOp) Outputs() []*Value { return op.outputs }

func (op *ScaleOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Scale(outputGrads[0], op.c)}, nil
}

// DotOp represents the inner product of two equal-length vectors.
type DotOp struct {
	inputs  []*Value
	outputs []*Value
}

// Dot computes the inner product of two equal-length vectors, returning a
// scalar value.
func Dot(a, b *Value) *Value {
	if a.Len() != b.Len() {
		panic("autodiff: Dot requires equal lengths")
	}
	sum := 0.0
	for i := range a.data {
		sum += a.data[i] * b.data[i]
	}
	op := &DotOp{inputs: []*Value{a, b}}
	out := newValue([]float64{sum}, op)
	op.outputs = []*Value{out}
	return out
}

func (op *DotOp) Inputs() []*Value  { return op.inputs }
func (op *DotOp) Outputs() []*Value { return op.outputs }

// Backward: d(a·b)/da = g*b, d(a·b)/db = g*a, with the scalar upstream
// gradient broadcast over each vector.
func (op *DotOp) Backward(outputGrads []*Value) ([]*Value, error) {
	g := outputGrads[0]
	a, b := op.inputs[0], op.inputs[1]
	return []*Value{Mul(g, b), Mul(g, a)}, nil
}
