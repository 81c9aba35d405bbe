// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// small dense vectors.
//
// Values form a computation graph as operations are applied; Grad walks
// the graph backwards to accumulate vector-Jacobian products. Backward
// passes are themselves built from graph operations, so gradients can be
// differentiated again for higher derivative orders.
//
// Example:
//
//	x := autodiff.Scalar(0.3)
//	y := autodiff.Mul(x, autodiff.Mul(x, x))
//
//	dy, _ := autodiff.Grad(y, []*autodiff.Value{x})   // 3x^2
//	d2y, _ := autodiff.Grad(dy[0], []*autodiff.Value{x}) // 6x
package autodiff

import (
	"github.com/varq-ml/varq/internal/autodiff"
)

// Value is a node in the computation graph holding a dense float64
// vector.
type Value = autodiff.Value

// Operation is a differentiable graph node.
type Operation = autodiff.Operation

// VJPFunc computes input gradients from output gradients for an opaque
// primitive.
type VJPFunc = autodiff.VJPFunc

// ErrNoGradientPath is returned by Grad when the output does not depend
// on any requested input.
var ErrNoGradientPath = autodiff.ErrNoGradientPath

// Leaf creates a graph leaf holding the given data.
func Leaf(data []float64) *Value { return autodiff.Leaf(data) }

// Scalar creates a graph leaf holding a single value.
func Scalar(x float64) *Value { return autodiff.Scalar(x) }

// Grad computes the gradient of scalar y with respect to each input.
func Grad(y *Value, inputs []*Value) ([]*Value, error) {
	return autodiff.Grad(y, inputs)
}

// NewCustom registers an opaque primitive with the given inputs, result
// vectors and gradient rule, returning one tracked output per result.
func NewCustom(inputs []*Value, results [][]float64, vjp VJPFunc) []*Value {
	return autodiff.NewCustom(inputs, results, vjp)
}

// Elementwise and reduction operations.
var (
	Add       = autodiff.Add
	Sub       = autodiff.Sub
	Neg       = autodiff.Neg
	Offset    = autodiff.Offset
	Mul       = autodiff.Mul
	Scale     = autodiff.Scale
	Dot       = autodiff.Dot
	Sin       = autodiff.Sin
	Cos       = autodiff.Cos
	Sum       = autodiff.Sum
	Broadcast = autodiff.Broadcast
	Take      = autodiff.Take
	Scatter   = autodiff.Scatter
)
