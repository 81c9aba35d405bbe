package autodiff

// VJPFunc is a custom vector-Jacobian-product rule: given one upstream
// gradient per output, it returns one gradient per input. Implementations
// may build the returned values from further graph operations (including
// re-invoking the forward operation), which keeps the rule differentiable.
// Errors from embedded device execution propagate out of Grad.
type VJPFunc func(outputGrads []*Value) ([]*Value, error)

// CustomOp is an opaque multi-output primitive with a side-channel
// gradient rule. The engine does not trace through its forward
// computation; differentiation uses only the registered VJPFunc.
type CustomOp struct {
	inputs  []*Value
	outputs []*Value
	vjp     VJPFunc
}

// NewCustom registers an opaque operation in the graph. results holds the
// concrete forward outputs (one vector per output, ragged lengths
// allowed); vjp is the custom backward rule. The returned values are the
// operation's outputs, aligned with results.
func NewCustom(inputs []*Value, results [][]float64, vjp VJPFunc) []*Value {
	op := &CustomOp{inputs: inputs, vjp: vjp}
	outputs := make([]*Value, len(results))
	for i, r := range results {
		data := make([]float64, len(r))
		copy(data, r)
		outputs[i] = newValue(data, op)
	}
	op.outputs = outputs
	return outputs
}

func (op *CustomOp) Inputs() []*Value  { return op.inputs }
func (op *CustomOp) Outputs() []*Value { return op.outputs }

func (op *CustomOp) Backward(outputGrads []*Value) ([]*Value, error) {
	return op.vjp(outputGrads)
}
