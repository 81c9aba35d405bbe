package optim

import "math"

// Adam implements the Adam optimizer (adaptive moment estimation).
//
// Update rule:
//
//	m = beta1 * m + (1 - beta1) * grad
//	v = beta2 * v + (1 - beta2) * grad^2
//	mHat = m / (1 - beta1^t)
//	vHat = v / (1 - beta2^t)
//	param = param - lr * mHat / (sqrt(vHat) + eps)
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64

	t int
	m []float64
	v []float64
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float64 // learning rate (default 0.001)
	Beta1 float64 // first-moment decay (default 0.9)
	Beta2 float64 // second-moment decay (default 0.999)
	Eps   float64 // numerical stability term (default 1e-8)
}

// NewAdam creates a new Adam optimizer.
func NewAdam(cfg AdamConfig) *Adam {
	if cfg.LR == 0 {
		cfg.LR = 0.001
	}
	if cfg.Beta1 == 0 {
		cfg.Beta1 = 0.9
	}
	if cfg.Beta2 == 0 {
		cfg.Beta2 = 0.999
	}
	if cfg.Eps == 0 {
		cfg.Eps = 1e-8
	}
	return &Adam{lr: cfg.LR, beta1: cfg.Beta1, beta2: cfg.Beta2, eps: cfg.Eps}
}

// Step applies one Adam update in place.
func (o *Adam) Step(params, grads []float64) error {
	if err := checkLengths("optim: Adam", params, grads, o.m); err != nil {
		return err
	}
	if o.m == nil {
		o.m = make([]float64, len(params))
		o.v = make([]float64, len(params))
	}
	o.t++
	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for i := range params {
		o.m[i] = o.beta1*o.m[i] + (1-o.beta1)*grads[i]
		o.v[i] = o.beta2*o.v[i] + (1-o.beta2)*grads[i]*grads[i]
		mHat := o.m[i] / c1
		vHat := o.v[i] / c2
		params[i] -= o.lr * mHat / (math.Sqrt(vHat) + o.eps)
	}
	return nil
}

// LR returns the learning rate.
func (o *Adam) LR() float64 {
	return o.lr
}
