// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package execute runs batches of quantum tapes on a device and
// registers the batch as a differentiable primitive, so that circuit
// results can participate in autodiff graphs up to a configurable
// derivative order.
//
// Example:
//
//	dev := simulator.New(2)
//	theta := autodiff.Scalar(0.4)
//	t := tape.New(
//	    []tape.Operation{{Name: "RY", Wires: []int{0}, Params: []tape.Number{theta}}},
//	    []tape.Measurement{{Kind: tape.Expval, Observable: tape.PauliZ(0)}},
//	)
//
//	out, err := execute.Execute(ctx, []*tape.Tape{t}, dev,
//	    execute.Gradient{Kind: execute.KindTransform, Transform: gradients.ParamShift},
//	    execute.Options{})
//
//	grads, err := autodiff.Grad(out[0], []*autodiff.Value{theta})
package execute

import (
	"context"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/device"
	"github.com/varq-ml/varq/internal/execute"
	"github.com/varq-ml/varq/internal/tape"
)

// Mode selects when Jacobians are computed for device-bound gradients.
type Mode = execute.Mode

// Execution modes.
const (
	ModeBackward = execute.ModeBackward
	ModeForward  = execute.ModeForward
)

// GradientKind tags how gradients are computed.
type GradientKind = execute.GradientKind

// Gradient kinds.
const (
	KindTransform = execute.KindTransform
	KindDevice    = execute.KindDevice
)

// Gradient names the gradient method for an execution.
type Gradient = execute.Gradient

// Options configures an execution.
type Options = execute.Options

// DefaultMaxDiff is the derivative-order ceiling used when Options
// leaves MaxDiff zero.
const DefaultMaxDiff = execute.DefaultMaxDiff

// Errors returned by Execute.
var (
	ErrEmptyBatch       = execute.ErrEmptyBatch
	ErrUnknownGradient  = execute.ErrUnknownGradient
	ErrForwardTransform = execute.ErrForwardTransform
)

// Execute runs the tape batch on the device and returns one tracked
// result vector per tape.
func Execute(ctx context.Context, tapes []*tape.Tape, dev device.Device, grad Gradient, opts Options) ([]*autodiff.Value, error) {
	return execute.Execute(ctx, tapes, dev, grad, opts)
}
