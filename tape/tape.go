// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tape provides the quantum tape: an ordered, device-independent
// record of gate operations and terminal measurements.
//
// Tapes are plain data. Parameters are held loosely typed so that tracked
// autodiff values and plain floats can occupy the same slots, and a
// trainable index set marks which parameters participate in
// differentiation.
//
// Example:
//
//	t := tape.New(
//	    []tape.Operation{
//	        {Name: "RY", Wires: []int{0}, Params: []tape.Number{0.4}},
//	        {Name: "RX", Wires: []int{1}, Params: []tape.Number{0.2}},
//	        {Name: "CNOT", Wires: []int{0, 1}},
//	    },
//	    []tape.Measurement{
//	        {Kind: tape.Expval, Observable: tape.PauliZ(0)},
//	    },
//	)
package tape

import (
	"github.com/varq-ml/varq/internal/tape"
)

// Number is a loosely typed circuit parameter: a float64 or a tracked
// value implementing Unboxer.
type Number = tape.Number

// Unboxer is implemented by tracked parameter types that can report
// their plain numeric value.
type Unboxer = tape.Unboxer

// Operation is a single gate application.
type Operation = tape.Operation

// Measurement is a terminal measurement statistic.
type Measurement = tape.Measurement

// MeasurementKind selects the statistic a measurement computes.
type MeasurementKind = tape.MeasurementKind

// Measurement kinds.
const (
	Expval = tape.Expval
	Var    = tape.Var
	Probs  = tape.Probs
)

// Observable is a Pauli-word observable.
type Observable = tape.Observable

// Tape is an ordered record of operations and measurements.
type Tape = tape.Tape

// New creates a tape from operations and measurements. All parameters
// start trainable.
func New(ops []Operation, measurements []Measurement) *Tape {
	return tape.New(ops, measurements)
}

// PauliZ returns the single-qubit Pauli-Z observable on the given wire.
func PauliZ(wire int) Observable { return tape.PauliZ(wire) }

// PauliX returns the single-qubit Pauli-X observable on the given wire.
func PauliX(wire int) Observable { return tape.PauliX(wire) }

// PauliY returns the single-qubit Pauli-Y observable on the given wire.
func PauliY(wire int) Observable { return tape.PauliY(wire) }

// Tensor combines observables on distinct wires into a tensor product.
func Tensor(obs ...Observable) Observable { return tape.Tensor(obs...) }

// Unwrap substitutes every tracked parameter in the tapes with its plain
// numeric value and returns a function restoring the originals.
func Unwrap(tapes ...*Tape) (restore func()) {
	return tape.Unwrap(tapes...)
}

// Marshal encodes a tape to CBOR. Tracked parameters are flattened to
// their numeric values.
func Marshal(t *Tape) ([]byte, error) { return tape.Marshal(t) }

// Unmarshal decodes a CBOR-encoded tape.
func Unmarshal(data []byte) (*Tape, error) { return tape.Unmarshal(data) }
