package execute

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/device"
	"github.com/varq-ml/varq/internal/tape"
)

var tracer = otel.Tracer("varq-execute")

// paramSlot locates one tracked parameter inside the batch: tape index
// plus position within that tape's trainable parameters. Slots align the
// opaque primitive's inputs with the VJP components computed per tape.
type paramSlot struct {
	tapeIdx  int
	paramIdx int
}

// ExecuteWith is the execution dispatcher at an explicit nesting level.
// Level 1 is a direct call; the gradient rule re-enters at level+1 when it
// executes gradient tapes, which is how derivative orders stack. Most
// callers want Execute.
func ExecuteWith(ctx context.Context, tapes []*tape.Tape, dev device.Device, fn ExecuteFn, grad Gradient, level int, opts Options) ([]*autodiff.Value, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	span.SetAttributes(
		attribute.Int("batch.size", len(tapes)),
		attribute.Int("nesting.level", level),
	)
	defer span.End()

	// Parameter extraction: the tracked trainable parameters become the
	// primitive's inputs, in batch order.
	var inputs []*autodiff.Value
	var slots []paramSlot
	for i, t := range tapes {
		for k, p := range t.GetParameters(true) {
			if v, ok := p.(*autodiff.Value); ok {
				inputs = append(inputs, v)
				slots = append(slots, paramSlot{tapeIdx: i, paramIdx: k})
			}
		}
	}

	// Devices consume plain numbers: substitute tracked parameters for
	// the duration of the device call and restore them on every exit
	// path, panics included. Tapes are caller-owned.
	var results [][]float64
	var jacs []*mat.Dense
	err := func() (err error) {
		restore := tape.Unwrap(tapes...)
		defer restore()
		results, jacs, err = fn(ctx, tapes)
		return err
	}()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("batch", len(tapes)).
		Int("tracked_params", len(inputs)).
		Int("level", level).
		Msg("dispatched tape batch")

	if len(results) != len(tapes) {
		return nil, fmt.Errorf("execute: device returned %d results for %d tapes", len(results), len(tapes))
	}

	if len(inputs) == 0 {
		// Nothing tracked: plain results, no primitive to register.
		out := make([]*autodiff.Value, len(results))
		for i, r := range results {
			out[i] = autodiff.Leaf(r)
		}
		return out, nil
	}

	vjp := newResolver(ctx, tapes, dev, fn, grad, slots, inputs, jacs, level, opts)
	return autodiff.NewCustom(inputs, results, vjp), nil
}

// scatterVJPs maps per-tape VJP components onto the primitive's inputs.
// Components for plain (untracked) trainable parameters are dropped: no
// graph input exists to receive them.
func scatterVJPs(vjps [][]*autodiff.Value, slots []paramSlot, n int) ([]*autodiff.Value, error) {
	grads := make([]*autodiff.Value, n)
	for i, slot := range slots {
		comps := vjps[slot.tapeIdx]
		if slot.paramIdx >= len(comps) {
			return nil, fmt.Errorf("execute: missing VJP component %d for tape %d", slot.paramIdx, slot.tapeIdx)
		}
		grads[i] = comps[slot.paramIdx]
	}
	return grads, nil
}
