// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package simulator provides an exact statevector simulator device with
// adjoint-method Jacobians.
//
// Example:
//
//	dev := simulator.New(2)
//	results, err := dev.BatchExecute(ctx, []*tape.Tape{t})
package simulator

import (
	"github.com/varq-ml/varq/internal/device/simulator"
)

// Simulator is an exact statevector simulator.
type Simulator = simulator.Simulator

// New creates a simulator over the given number of wires.
func New(wires int) *Simulator {
	return simulator.New(wires)
}
