// Package optim implements optimization algorithms for variational
// circuit training.
//
// Circuit parameters form a flat float64 vector; gradients come from
// differentiating executed tape batches. Optimizers update the vector in
// place:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.1})
//	for step := 0; step < steps; step++ {
//	    grads := lossGradient(params)
//	    opt.Step(params, grads)
//	}
package optim

import "fmt"

// Optimizer updates a flat parameter vector in place from its gradient.
type Optimizer interface {
	// Step applies one gradient update. params and grads must have equal
	// length, stable across calls.
	Step(params, grads []float64) error

	// LR returns the current learning rate.
	LR() float64
}

func checkLengths(name string, params, grads []float64, state []float64) error {
	if len(params) != len(grads) {
		return fmt.Errorf("%s: %d parameters but %d gradients", name, len(params), len(grads))
	}
	if state != nil && len(state) != len(params) {
		return fmt.Errorf("%s: parameter count changed from %d to %d between steps", name, len(state), len(params))
	}
	return nil
}
