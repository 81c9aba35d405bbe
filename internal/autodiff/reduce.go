package autodiff

// SumOp reduces a vector to the scalar sum of its elements.
type SumOp struct {
	inputs  []*Value
	outputs []*Value
}

// Sum returns the scalar sum of all elements.
func Sum(x *Value) *Value {
	total := 0.0
	for _, v := range x.data {
		total += v
	}
	op := &SumOp{inputs: []*Value{x}}
	out := newValue([]float64{total}, op)
	op.outputs = []*Value{out}
	return out
}

func (op *SumOp) Inputs() []*Value  { return op.inputs }
func (op *SumOp) Outputs() []*Value { return op.outputs }

// Backward broadcasts the scalar upstream gradient over the input length.
func (op *SumOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Broadcast(outputGrads[0], op.inputs[0].Len())}, nil
}

// BroadcastOp expands a scalar to a vector of length n.
type BroadcastOp struct {
	inputs  []*Value
	outputs []*Value
}

// Broadcast expands a scalar value to a vector of length n.
func Broadcast(x *Value, n int) *Value {
	if x.Len() == n {
		return x
	}
	if x.Len() != 1 {
		panic("autodiff: Broadcast requires a scalar input")
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = x.data[0]
	}
	op := &BroadcastOp{inputs: []*Value{x}}
	out := newValue(data, op)
	op.outputs = []*Value{out}
	return out
}

func (op *BroadcastOp) Inputs() []*Value  { return op.inputs }
func (op *BroadcastOp) Outputs() []*Value { return op.outputs }

// Backward sums the upstream gradient over the broadcast dimension.
func (op *BroadcastOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return []*Value{Sum(outputGrads[0])}, nil
}
