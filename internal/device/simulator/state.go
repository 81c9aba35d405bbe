package simulator

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/varq-ml/varq/internal/tape"
)

// state is a dense statevector over n qubits. Wire 0 is the most
// significant bit of the basis-state index.
type state struct {
	amps   []complex128
	qubits int
}

func newState(qubits int) *state {
	amps := make([]complex128, 1<<qubits)
	amps[0] = 1
	return &state{amps: amps, qubits: qubits}
}

func (s *state) clone() *state {
	amps := make([]complex128, len(s.amps))
	copy(amps, s.amps)
	return &state{amps: amps, qubits: s.qubits}
}

// bit returns the index mask selecting the given wire.
func (s *state) bit(wire int) int {
	return 1 << (s.qubits - 1 - wire)
}

// applySingle applies a 2x2 matrix [[a,b],[c,d]] to one wire.
func (s *state) applySingle(wire int, a, b, c, d complex128) {
	bit := s.bit(wire)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.amps[i], s.amps[j]
			s.amps[i] = a*a0 + b*a1
			s.amps[j] = c*a0 + d*a1
		}
	}
}

func (s *state) applyH(wire int) {
	h := complex(1/math.Sqrt2, 0)
	s.applySingle(wire, h, h, h, -h)
}

func (s *state) applyX(wire int) {
	s.applySingle(wire, 0, 1, 1, 0)
}

func (s *state) applyY(wire int) {
	s.applySingle(wire, 0, -1i, 1i, 0)
}

func (s *state) applyZ(wire int) {
	s.applySingle(wire, 1, 0, 0, -1)
}

func (s *state) applyPhase(wire int, factor complex128) {
	bit := s.bit(wire)
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

// applyRX applies exp(-i theta X / 2).
func (s *state) applyRX(wire int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	si := complex(0, -math.Sin(theta/2))
	s.applySingle(wire, c, si, si, c)
}

// applyRY applies exp(-i theta Y / 2).
func (s *state) applyRY(wire int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	si := complex(math.Sin(theta/2), 0)
	s.applySingle(wire, c, -si, si, c)
}

// applyRZ applies exp(-i theta Z / 2).
func (s *state) applyRZ(wire int, theta float64) {
	em := cmplx.Exp(complex(0, -theta/2))
	ep := cmplx.Exp(complex(0, theta/2))
	s.applySingle(wire, em, 0, 0, ep)
}

func (s *state) applyCNOT(control, target int) {
	cb, tb := s.bit(control), s.bit(target)
	for i := range s.amps {
		if i&cb != 0 && i&tb == 0 {
			j := i | tb
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *state) applyCZ(a, b int) {
	ab, bb := s.bit(a), s.bit(b)
	for i := range s.amps {
		if i&ab != 0 && i&bb != 0 {
			s.amps[i] *= -1
		}
	}
}

func (s *state) applySWAP(a, b int) {
	ab, bb := s.bit(a), s.bit(b)
	for i := range s.amps {
		if i&ab != 0 && i&bb == 0 {
			j := (i &^ ab) | bb
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// apply runs one gate. Parameters must be plain numbers.
func (s *state) apply(op tape.Operation) error {
	p := func(i int) float64 { return tape.Float(op.Params[i]) }
	switch op.Name {
	case "Hadamard", "H":
		s.applyH(op.Wires[0])
	case "PauliX", "X":
		s.applyX(op.Wires[0])
	case "PauliY", "Y":
		s.applyY(op.Wires[0])
	case "PauliZ", "Z":
		s.applyZ(op.Wires[0])
	case "S":
		s.applyPhase(op.Wires[0], 1i)
	case "T":
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, math.Pi/4)))
	case "RX":
		s.applyRX(op.Wires[0], p(0))
	case "RY":
		s.applyRY(op.Wires[0], p(0))
	case "RZ":
		s.applyRZ(op.Wires[0], p(0))
	case "PhaseShift":
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, p(0))))
	case "Rot":
		s.applyRZ(op.Wires[0], p(0))
		s.applyRY(op.Wires[0], p(1))
		s.applyRZ(op.Wires[0], p(2))
	case "CNOT", "CX":
		s.applyCNOT(op.Wires[0], op.Wires[1])
	case "CZ":
		s.applyCZ(op.Wires[0], op.Wires[1])
	case "SWAP":
		s.applySWAP(op.Wires[0], op.Wires[1])
	default:
		return fmt.Errorf("simulator: unsupported gate %q", op.Name)
	}
	return nil
}

// applyInverse runs the inverse of one gate.
func (s *state) applyInverse(op tape.Operation) error {
	p := func(i int) float64 { return tape.Float(op.Params[i]) }
	switch op.Name {
	case "RX":
		s.applyRX(op.Wires[0], -p(0))
		return nil
	case "RY":
		s.applyRY(op.Wires[0], -p(0))
		return nil
	case "RZ":
		s.applyRZ(op.Wires[0], -p(0))
		return nil
	case "PhaseShift":
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, -p(0))))
		return nil
	case "S":
		s.applyPhase(op.Wires[0], -1i)
		return nil
	case "T":
		s.applyPhase(op.Wires[0], cmplx.Exp(complex(0, -math.Pi/4)))
		return nil
	case "Rot":
		s.applyRZ(op.Wires[0], -p(2))
		s.applyRY(op.Wires[0], -p(1))
		s.applyRZ(op.Wires[0], -p(0))
		return nil
	}
	// Self-inverse gates.
	return s.apply(op)
}

// applyPauli applies a single-qubit Pauli by name.
func (s *state) applyPauli(name string, wire int) error {
	switch name {
	case "PauliX":
		s.applyX(wire)
	case "PauliY":
		s.applyY(wire)
	case "PauliZ":
		s.applyZ(wire)
	default:
		return fmt.Errorf("simulator: unsupported observable %q", name)
	}
	return nil
}

// applyObservable applies a Pauli word.
func (s *state) applyObservable(obs tape.Observable) error {
	for i, name := range obs.Names {
		if err := s.applyPauli(name, obs.Wires[i]); err != nil {
			return err
		}
	}
	return nil
}

// scale multiplies every amplitude by c.
func (s *state) scale(c complex128) {
	for i := range s.amps {
		s.amps[i] *= c
	}
}

// project zeroes every amplitude where the wire is |0>, keeping the
// |1><1| component.
func (s *state) project(wire int) {
	bit := s.bit(wire)
	for i := range s.amps {
		if i&bit == 0 {
			s.amps[i] = 0
		}
	}
}

// inner computes <a|b>.
func inner(a, b *state) complex128 {
	var sum complex128
	for i := range a.amps {
		sum += cmplx.Conj(a.amps[i]) * b.amps[i]
	}
	return sum
}
