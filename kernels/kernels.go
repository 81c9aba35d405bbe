// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernels provides cost functions for quantum kernel methods.
package kernels

import (
	"github.com/varq-ml/varq/internal/kernels"
)

// Kernel maps two datapoints to a kernel value.
type Kernel = kernels.Kernel

// Kernel matrix construction and cost functions.
var (
	SquareKernelMatrix        = kernels.SquareKernelMatrix
	FrobeniusInnerProduct     = kernels.FrobeniusInnerProduct
	Polarity                  = kernels.Polarity
	TargetAlignment           = kernels.TargetAlignment
	TaskModelAlignment        = kernels.TaskModelAlignment
	MitigateDepolarizingNoise = kernels.MitigateDepolarizingNoise
)
