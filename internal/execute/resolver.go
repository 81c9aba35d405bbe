package execute

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/device"
	"github.com/varq-ml/varq/internal/gradients"
	"github.com/varq-ml/varq/internal/tape"
)

// newResolver builds the opaque primitive's gradient rule. Given the
// upstream gradients (one per tape), the rule produces one VJP component
// per tracked parameter, choosing the procedure in this order:
//
//  1. Jacobians stored from a forward-accumulation pass: contract
//     classically, no further device calls.
//  2. Gradient transform: build gradient tapes and re-enter the
//     dispatcher at level+1. The recursive call registers its own
//     primitive, so this VJP computation is itself differentiable —
//     that recursion is what makes higher-order derivatives work.
//  3. Device-native gradient method: compute Jacobians now (under a
//     fresh parameter-substitution scope) and contract classically.
//
// Paths 1 and 3 contract with constant Jacobians: derivatives beyond
// first order are a defined zero, kept on the graph by a zero-weight link
// to each input so that outer differentiation succeeds deterministically
// instead of finding no gradient path.
func newResolver(ctx context.Context, tapes []*tape.Tape, dev device.Device, fn ExecuteFn, grad Gradient, slots []paramSlot, inputs []*autodiff.Value, jacs []*mat.Dense, level int, opts Options) autodiff.VJPFunc {
	return func(outputGrads []*autodiff.Value) ([]*autodiff.Value, error) {
		if len(jacs) > 0 {
			vjps, err := contractJacobians(outputGrads, jacs)
			if err != nil {
				return nil, err
			}
			return pinToInputs(vjps, slots, inputs)
		}

		switch grad.Kind {
		case KindTransform:
			return transformVJP(ctx, tapes, dev, fn, grad, slots, inputs, outputGrads, level, opts)

		case KindDevice:
			gdev, ok := dev.(device.GradientDevice)
			if !ok {
				return nil, fmt.Errorf("execute: device %q has no native gradient method", dev.Name())
			}
			var deviceJacs []*mat.Dense
			err := func() (err error) {
				restore := tape.Unwrap(tapes...)
				defer restore()
				deviceJacs, err = gdev.Gradients(ctx, tapes)
				return err
			}()
			if err != nil {
				return nil, err
			}
			vjps, err := contractJacobians(outputGrads, deviceJacs)
			if err != nil {
				return nil, err
			}
			return pinToInputs(vjps, slots, inputs)

		default:
			return nil, fmt.Errorf("%w: kind %d", ErrUnknownGradient, grad.Kind)
		}
	}
}

// transformVJP realizes the recursive, differentiable gradient path. At
// the MaxDiff ceiling the recursion still runs — the first-order VJP must
// stay correct — but on detached tapes and gradients, so the order beyond
// the ceiling is a defined zero.
func transformVJP(ctx context.Context, tapes []*tape.Tape, dev device.Device, fn ExecuteFn, grad Gradient, slots []paramSlot, inputs, outputGrads []*autodiff.Value, level int, opts Options) ([]*autodiff.Value, error) {
	srcTapes := tapes
	dys := outputGrads
	pin := false
	if level >= opts.MaxDiff {
		detached, err := detachTapes(tapes)
		if err != nil {
			return nil, err
		}
		srcTapes = detached
		dys = make([]*autodiff.Value, len(outputGrads))
		for i, dy := range outputGrads {
			dys[i] = dy.Detach()
		}
		pin = true
	}

	gtapes, process, err := gradients.BatchVJP(srcTapes, dys, grad.Transform)
	if err != nil {
		return nil, err
	}
	if len(gtapes) == 0 {
		return zeroGradsLinked(inputs), nil
	}

	results, err := ExecuteWith(ctx, gtapes, dev, fn, grad, level+1, opts)
	if err != nil {
		return nil, err
	}
	vjps, err := process(results)
	if err != nil {
		return nil, err
	}
	grads, err := scatterVJPs(vjps, slots, len(inputs))
	if err != nil {
		return nil, err
	}
	if pin {
		for i := range grads {
			grads[i] = autodiff.Add(grads[i], autodiff.Scale(inputs[i], 0))
		}
	}
	return grads, nil
}

// contractJacobians computes per-tape classical VJPs from constant
// Jacobians.
func contractJacobians(outputGrads []*autodiff.Value, jacs []*mat.Dense) ([][]*autodiff.Value, error) {
	if len(jacs) != len(outputGrads) {
		return nil, fmt.Errorf("execute: %d Jacobians for %d upstream gradients", len(jacs), len(outputGrads))
	}
	vjps := make([][]*autodiff.Value, len(jacs))
	for i, jac := range jacs {
		comps, err := gradients.VJPFromJacobian(outputGrads[i], jac)
		if err != nil {
			return nil, err
		}
		vjps[i] = comps
	}
	return vjps, nil
}

// pinToInputs scatters classical VJP components onto the inputs, adding a
// zero-weight graph link so that further differentiation yields zeros
// rather than a missing gradient path.
func pinToInputs(vjps [][]*autodiff.Value, slots []paramSlot, inputs []*autodiff.Value) ([]*autodiff.Value, error) {
	grads, err := scatterVJPs(vjps, slots, len(inputs))
	if err != nil {
		return nil, err
	}
	for i := range grads {
		grads[i] = autodiff.Add(grads[i], autodiff.Scale(inputs[i], 0))
	}
	return grads, nil
}

// detachTapes copies every tape with plain numeric trainable parameters.
func detachTapes(tapes []*tape.Tape) ([]*tape.Tape, error) {
	out := make([]*tape.Tape, len(tapes))
	for i, t := range tapes {
		params := t.GetParameters(true)
		plain := make([]tape.Number, len(params))
		for k, p := range params {
			plain[k] = tape.Float(p)
		}
		copied, err := t.Copy(plain)
		if err != nil {
			return nil, err
		}
		out[i] = copied
	}
	return out, nil
}

// zeroGradsLinked returns zero gradients with a graph link to each input.
func zeroGradsLinked(inputs []*autodiff.Value) []*autodiff.Value {
	out := make([]*autodiff.Value, len(inputs))
	for i, in := range inputs {
		out[i] = autodiff.Scale(in, 0)
	}
	return out
}
