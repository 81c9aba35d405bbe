// Package execute implements the differentiable batch-execution interface:
// it runs batches of tapes on a device and registers the whole batch call
// as a single opaque, differentiable primitive in the host autodiff graph.
//
// The registered gradient rule supports three procedures, resolved by an
// explicit tag rather than runtime inspection: precomputed Jacobians from
// forward accumulation, recursively executed gradient transforms (which
// make arbitrary-order derivatives possible), and device-native gradient
// methods (first order only).
package execute

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/device"
	"github.com/varq-ml/varq/internal/gradients"
	"github.com/varq-ml/varq/internal/tape"
)

// Mode selects when Jacobians are computed.
type Mode int

const (
	// ModeBackward defers all derivative computation to the backward
	// pass. Required for gradient transforms.
	ModeBackward Mode = iota
	// ModeForward computes Jacobians eagerly alongside the forward
	// results, in a single device call.
	ModeForward
)

func (m Mode) String() string {
	switch m {
	case ModeBackward:
		return "backward"
	case ModeForward:
		return "forward"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// GradientKind tags the supplied gradient procedure. Callers state what
// they are passing; the resolver never inspects the procedure itself.
type GradientKind int

const (
	// KindTransform marks a differentiable gradient transform
	// (parameter shift, finite differences). Supports arbitrary-order
	// derivatives through recursive execution.
	KindTransform GradientKind = iota
	// KindDevice marks the device's native gradient method. It exposes
	// no derivative information of its own: derivatives beyond first
	// order are a defined zero.
	KindDevice
)

// Gradient is a tagged gradient procedure.
type Gradient struct {
	Kind      GradientKind
	Transform gradients.Transform // required for KindTransform
}

// Options configures an execution.
type Options struct {
	// Mode selects forward or backward accumulation. Default backward.
	Mode Mode
	// MaxDiff caps the derivative order obtainable through gradient
	// transforms. Each extra order multiplies the number of device
	// calls. Zero means DefaultMaxDiff.
	MaxDiff int
}

// DefaultMaxDiff allows second-order derivatives out of the box.
const DefaultMaxDiff = 2

// Configuration errors. All of them surface before any device call.
var (
	ErrEmptyBatch      = errors.New("execute: empty tape batch")
	ErrUnknownGradient = errors.New("execute: unknown gradient procedure")
	// ErrForwardTransform rejects forward accumulation combined with a
	// gradient transform: transform gradients exist only as a backward
	// procedure, and silently accepting the combination would produce
	// wrong gradients.
	ErrForwardTransform = errors.New("execute: gradient transforms cannot be used with forward mode")
)

// ExecuteFn runs a batch of tapes holding plain numeric parameters. The
// returned Jacobian list is nil when derivative computation is deferred to
// the backward pass (backward accumulation) and populated when the device
// computed Jacobians eagerly (forward accumulation).
type ExecuteFn func(ctx context.Context, tapes []*tape.Tape) ([][]float64, []*mat.Dense, error)

// Execute runs a batch of tapes on a device, differentiably.
//
// The returned values are ordered like the batch; each value's length is
// governed by its own tape's measurement terminals. Derivatives with
// respect to any graph-tracking tape parameter are available through
// autodiff.Grad, up to opts.MaxDiff orders for transform gradients.
func Execute(ctx context.Context, tapes []*tape.Tape, dev device.Device, grad Gradient, opts Options) ([]*autodiff.Value, error) {
	if len(tapes) == 0 {
		return nil, ErrEmptyBatch
	}
	if opts.MaxDiff <= 0 {
		opts.MaxDiff = DefaultMaxDiff
	}

	var fn ExecuteFn
	switch grad.Kind {
	case KindTransform:
		if grad.Transform == nil {
			return nil, fmt.Errorf("%w: nil transform", ErrUnknownGradient)
		}
		if opts.Mode == ModeForward {
			return nil, ErrForwardTransform
		}
		fn = batchExecuteFn(dev)

	case KindDevice:
		gdev, ok := dev.(device.GradientDevice)
		if !ok {
			return nil, fmt.Errorf("execute: device %q has no native gradient method", dev.Name())
		}
		if opts.Mode == ModeForward {
			fdev, ok := dev.(device.ForwardDevice)
			if !ok {
				return nil, fmt.Errorf("execute: device %q does not support forward accumulation", dev.Name())
			}
			fn = fdev.ExecuteAndGradients
		} else {
			fn = batchExecuteFn(gdev)
		}

	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownGradient, grad.Kind)
	}

	return ExecuteWith(ctx, tapes, dev, fn, grad, 1, opts)
}

// batchExecuteFn adapts a plain device execution to the ExecuteFn shape,
// with no eager Jacobians.
func batchExecuteFn(dev device.Device) ExecuteFn {
	return func(ctx context.Context, tapes []*tape.Tape) ([][]float64, []*mat.Dense, error) {
		results, err := dev.BatchExecute(ctx, tapes)
		return results, nil, err
	}
}
