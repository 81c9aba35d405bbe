package simulator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/tape"
)

// adjointJacobian executes a tape and computes its Jacobian with the
// adjoint method: one forward pass, then a reverse sweep un-applying each
// gate while propagating one "bra" state per observable.
//
// Rows of the Jacobian are indexed by the tape's measurement terminals,
// columns by its trainable parameters. Only expectation-value measurements
// are supported, matching the usual limits of adjoint differentiation.
func (s *Simulator) adjointJacobian(t *tape.Tape) ([]float64, *mat.Dense, error) {
	t = t.Expand()
	for _, m := range t.Measurements {
		if m.Kind != tape.Expval {
			return nil, nil, fmt.Errorf("simulator: adjoint differentiation supports expectation values only")
		}
	}

	res, ket, err := s.run(t)
	if err != nil {
		return nil, nil, err
	}

	lambdas := make([]*state, len(t.Measurements))
	for k, m := range t.Measurements {
		l := ket.clone()
		if err := l.applyObservable(m.Observable); err != nil {
			return nil, nil, err
		}
		lambdas[k] = l
	}

	trainIdx := t.TrainableParams()
	cols := make(map[int]int, len(trainIdx))
	for c, idx := range trainIdx {
		cols[idx] = c
	}

	var jac *mat.Dense
	if len(trainIdx) > 0 {
		jac = mat.NewDense(len(t.Measurements), len(trainIdx), nil)
	} else {
		jac = &mat.Dense{}
	}

	pIdx := t.NumParams()
	for i := len(t.Operations) - 1; i >= 0; i-- {
		op := t.Operations[i]
		pIdx -= len(op.Params)
		if len(op.Params) > 0 {
			if c, ok := cols[pIdx]; ok {
				if len(op.Params) > 1 {
					return nil, nil, fmt.Errorf("simulator: adjoint differentiation does not support multi-parameter gate %q", op.Name)
				}
				mu, err := applyGenerator(op, ket)
				if err != nil {
					return nil, nil, err
				}
				for k, l := range lambdas {
					jac.Set(k, c, 2*real(inner(l, mu)))
				}
			}
		}
		if err := ket.applyInverse(op); err != nil {
			return nil, nil, err
		}
		for _, l := range lambdas {
			if err := l.applyInverse(op); err != nil {
				return nil, nil, err
			}
		}
	}

	return res, jac, nil
}

// applyGenerator returns dU/dtheta applied to the state that already
// includes U. For a rotation exp(-i theta P / 2) this is (-i/2) P |psi>;
// for PhaseShift it is i |1><1| |psi>.
func applyGenerator(op tape.Operation, ket *state) (*state, error) {
	mu := ket.clone()
	switch op.Name {
	case "RX":
		mu.applyX(op.Wires[0])
		mu.scale(-0.5i)
	case "RY":
		mu.applyY(op.Wires[0])
		mu.scale(-0.5i)
	case "RZ":
		mu.applyZ(op.Wires[0])
		mu.scale(-0.5i)
	case "PhaseShift":
		mu.project(op.Wires[0])
		mu.scale(1i)
	default:
		return nil, fmt.Errorf("simulator: adjoint differentiation does not support trainable gate %q", op.Name)
	}
	return mu, nil
}
