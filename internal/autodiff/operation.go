package autodiff

// Operation is a differentiable operation in the computation graph. Each
// operation records its inputs and outputs during the forward pass and
// computes input gradients during the backward pass.
//
// Backward receives one output gradient per output, aligned with
// Outputs(), and returns one input gradient per input, aligned with
// Inputs(). The returned gradients are Values built from graph operations,
// so the backward pass itself is differentiable.
type Operation interface {
	// Inputs returns the input values of this operation.
	Inputs() []*Value

	// Outputs returns all output values produced by this operation.
	// Most operations have exactly one output; the opaque batch
	// primitive has one output per tape.
	Outputs() []*Value

	// Backward computes input gradients given gradients for ALL outputs.
	// Missing output gradients are zero-filled by the engine before this
	// is called. A nil entry in the returned slice means no gradient
	// flows to that input.
	//
	// Elementary operations never fail; the error return exists for
	// opaque primitives whose gradient rules perform device execution.
	Backward(outputGrads []*Value) ([]*Value, error)
}
