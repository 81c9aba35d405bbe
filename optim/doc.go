// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for variational circuit
// training.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum
//   - Adam: adaptive moment estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	params := []float64{0.1, 0.2}
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.1})
//
//	for step := 0; step < 100; step++ {
//	    loss, grads := costAndGradient(params)
//	    if err := opt.Step(params, grads); err != nil {
//	        return err
//	    }
//	    _ = loss
//	}
package optim
