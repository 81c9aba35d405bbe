// Copyright 2025 VarQ ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device defines the interfaces a quantum execution backend
// implements: batched tape execution, and optionally device-computed
// Jacobians.
package device

import (
	"github.com/varq-ml/varq/internal/device"
)

// Device executes batches of tapes.
type Device = device.Device

// GradientDevice computes Jacobians for batches of tapes.
type GradientDevice = device.GradientDevice

// ForwardDevice computes results and Jacobians in a single pass.
type ForwardDevice = device.ForwardDevice
