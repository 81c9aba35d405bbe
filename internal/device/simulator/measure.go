package simulator

import (
	"fmt"

	"github.com/varq-ml/varq/internal/tape"
)

// expval computes <psi|P|psi> for a Pauli word.
func (s *state) expval(obs tape.Observable) (float64, error) {
	applied := s.clone()
	if err := applied.applyObservable(obs); err != nil {
		return 0, err
	}
	return real(inner(s, applied)), nil
}

// variance computes Var(P) = <P^2> - <P>^2. Pauli words square to the
// identity, so this is 1 - <P>^2.
func (s *state) variance(obs tape.Observable) (float64, error) {
	e, err := s.expval(obs)
	if err != nil {
		return 0, err
	}
	return 1 - e*e, nil
}

// probs computes the marginal probability distribution over the given
// wires, ordered with the first wire as the most significant bit.
func (s *state) probs(wires []int) []float64 {
	out := make([]float64, 1<<len(wires))
	for i, a := range s.amps {
		idx := 0
		for _, w := range wires {
			idx <<= 1
			if i&s.bit(w) != 0 {
				idx |= 1
			}
		}
		out[idx] += real(a)*real(a) + imag(a)*imag(a)
	}
	return out
}

// measure evaluates every measurement terminal of the tape against the
// final state, concatenated in terminal order.
func (s *state) measure(t *tape.Tape) ([]float64, error) {
	var out []float64
	for _, m := range t.Measurements {
		switch m.Kind {
		case tape.Expval:
			e, err := s.expval(m.Observable)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		case tape.Var:
			v, err := s.variance(m.Observable)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		case tape.Probs:
			out = append(out, s.probs(m.Wires)...)
		default:
			return nil, fmt.Errorf("simulator: unsupported measurement kind %d", m.Kind)
		}
	}
	return out, nil
}
