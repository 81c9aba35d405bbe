// Package device defines the execution-target contract for quantum tapes.
//
// A Device consumes batches of tapes holding plain numeric parameters and
// returns one result vector per tape. Derivative capabilities are optional
// and discovered by type assertion: a device may compute Jacobians on
// request (GradientDevice) or alongside the forward results
// (ForwardDevice).
package device

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/tape"
)

// Device executes batches of tapes. Results are ordered like the input
// batch; each result's length is governed by its own tape's measurement
// terminals, so lengths may differ across the batch.
type Device interface {
	// Name identifies the device.
	Name() string

	// BatchExecute runs every tape in the batch and returns one result
	// vector per tape. Tapes must hold plain numeric parameters when
	// this is called.
	BatchExecute(ctx context.Context, tapes []*tape.Tape) ([][]float64, error)
}

// GradientDevice is a device with a native, non-differentiable gradient
// procedure. Gradients returns one Jacobian per tape with rows indexed by
// the tape's flattened outputs and columns by its trainable parameters.
type GradientDevice interface {
	Device

	Gradients(ctx context.Context, tapes []*tape.Tape) ([]*mat.Dense, error)
}

// ForwardDevice is a device that can compute results and Jacobians in a
// single call (forward accumulation).
type ForwardDevice interface {
	Device

	ExecuteAndGradients(ctx context.Context, tapes []*tape.Tape) ([][]float64, []*mat.Dense, error)
}
