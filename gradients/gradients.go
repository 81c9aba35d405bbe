// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gradients provides tape-level gradient transforms: rules that
// expand a tape into a batch of gradient tapes plus a post-processor
// combining the executed results into derivative columns.
package gradients

import (
	"github.com/varq-ml/varq/internal/gradients"
)

// Transform expands a tape into gradient tapes and a processor.
type Transform = gradients.Transform

// Processor combines executed gradient-tape results into one derivative
// column per trainable parameter.
type Processor = gradients.Processor

// ParamShift is the exact parameter-shift rule for Pauli rotation gates.
var ParamShift Transform = gradients.ParamShift

// FiniteDiff returns a central finite-difference transform with the
// given step. A non-positive step selects DefaultStep.
func FiniteDiff(step float64) Transform {
	return gradients.FiniteDiff(step)
}

// DefaultStep is the finite-difference step used when none is given.
const DefaultStep = gradients.DefaultStep

// BatchVJP expands every tape in a batch through the transform and
// returns the combined gradient-tape batch plus a function contracting
// executed results with the output cotangents.
var BatchVJP = gradients.BatchVJP

// VJPFromJacobian contracts an output cotangent with a device-computed
// Jacobian.
var VJPFromJacobian = gradients.VJPFromJacobian
