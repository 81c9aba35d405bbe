package optim

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	lr       float64
	momentum float64
	velocity []float64
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // learning rate (default 0.01)
	Momentum float64 // momentum factor in [0, 1)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(cfg SGDConfig) *SGD {
	if cfg.LR == 0 {
		cfg.LR = 0.01
	}
	return &SGD{lr: cfg.LR, momentum: cfg.Momentum}
}

// Step applies one SGD update in place.
func (o *SGD) Step(params, grads []float64) error {
	if err := checkLengths("optim: SGD", params, grads, o.velocity); err != nil {
		return err
	}
	if o.momentum == 0 {
		for i := range params {
			params[i] -= o.lr * grads[i]
		}
		return nil
	}
	if o.velocity == nil {
		o.velocity = make([]float64, len(params))
	}
	for i := range params {
		o.velocity[i] = o.momentum*o.velocity[i] + grads[i]
		params[i] -= o.lr * o.velocity[i]
	}
	return nil
}

// LR returns the learning rate.
func (o *SGD) LR() float64 {
	return o.lr
}
