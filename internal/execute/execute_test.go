package execute_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varq-ml/varq/internal/autodiff"
	"github.com/varq-ml/varq/internal/device/simulator"
	"github.com/varq-ml/varq/internal/execute"
	"github.com/varq-ml/varq/internal/gradients"
	"github.com/varq-ml/varq/internal/tape"
)

var paramShift = execute.Gradient{Kind: execute.KindTransform, Transform: gradients.ParamShift}

// rotTape builds RX(a) RY(b) on wire 0 measuring <Z> = cos(a)cos(b).
func rotTape(a, b tape.Number) *tape.Tape {
	return tape.New(
		[]tape.Operation{
			{Name: "RX", Wires: []int{0}, Params: []tape.Number{a}},
			{Name: "RY", Wires: []int{0}, Params: []tape.Number{b}},
		},
		[]tape.Measurement{{Kind: tape.Expval, Observable: tape.PauliZ(0)}},
	)
}

// TestExecute_PlainParameters runs a batch with no tracked parameters:
// forward execution succeeds, differentiation reports no gradient path.
func TestExecute_PlainParameters(t *testing.T) {
	dev := simulator.New(1)
	a, b := 0.4, 0.9
	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev, paramShift, execute.Options{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, math.Cos(a)*math.Cos(b), out[0].At(0), 1e-10)

	x := autodiff.Scalar(0)
	_, err = autodiff.Grad(out[0], []*autodiff.Value{x})
	assert.ErrorIs(t, err, autodiff.ErrNoGradientPath)
}

// TestExecute_ParamShiftGradients checks analytic first-order gradients.
func TestExecute_ParamShiftGradients(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)

	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev, paramShift, execute.Options{})
	require.NoError(t, err)

	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a, b})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.4)*math.Cos(0.9), grads[0].At(0), 1e-10)
	assert.InDelta(t, -math.Cos(0.4)*math.Sin(0.9), grads[1].At(0), 1e-10)
}

// TestExecute_RestoresTrackedParameters leaves the caller's tape intact
// after the device has seen plain numbers.
func TestExecute_RestoresTrackedParameters(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)
	tp := rotTape(a, b)

	_, err := execute.Execute(context.Background(), []*tape.Tape{tp}, dev, paramShift, execute.Options{})
	require.NoError(t, err)

	params := tp.GetParameters(false)
	assert.Same(t, a, params[0])
	assert.Same(t, b, params[1])
}

// TestExecute_TapeReuse re-executes one tape structure at new parameter
// values.
func TestExecute_TapeReuse(t *testing.T) {
	dev := simulator.New(1)
	tp := rotTape(0.0, 0.0)

	for _, theta := range []float64{0.3, 1.2} {
		a := autodiff.Scalar(theta)
		b := autodiff.Scalar(0.5)
		require.NoError(t, tp.SetParameters([]tape.Number{a, b}, true))

		out, err := execute.Execute(context.Background(), []*tape.Tape{tp}, dev, paramShift, execute.Options{})
		require.NoError(t, err)
		assert.InDelta(t, math.Cos(theta)*math.Cos(0.5), out[0].At(0), 1e-10)

		grads, err := autodiff.Grad(out[0], []*autodiff.Value{a})
		require.NoError(t, err)
		assert.InDelta(t, -math.Sin(theta)*math.Cos(0.5), grads[0].At(0), 1e-10)
	}
}

// TestExecute_DeviceGradient uses the device-native adjoint method.
func TestExecute_DeviceGradient(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)

	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev,
		execute.Gradient{Kind: execute.KindDevice}, execute.Options{})
	require.NoError(t, err)

	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a, b})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.4)*math.Cos(0.9), grads[0].At(0), 1e-10)
	assert.InDelta(t, -math.Cos(0.4)*math.Sin(0.9), grads[1].At(0), 1e-10)
}

// TestExecute_DeviceGradientSecondOrderZero differentiates the
// device-method gradient again: the result is a defined zero, not a
// missing gradient path.
func TestExecute_DeviceGradientSecondOrderZero(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)

	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev,
		execute.Gradient{Kind: execute.KindDevice}, execute.Options{})
	require.NoError(t, err)

	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a})
	require.NoError(t, err)

	second, err := autodiff.Grad(grads[0], []*autodiff.Value{a})
	require.NoError(t, err)
	assert.Equal(t, 0.0, second[0].At(0))
}

// TestExecute_ForwardMode stores Jacobians from the forward pass; the
// backward pass contracts them without further device calls.
func TestExecute_ForwardMode(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)

	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev,
		execute.Gradient{Kind: execute.KindDevice}, execute.Options{Mode: execute.ModeForward})
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(0.4)*math.Cos(0.9), out[0].At(0), 1e-10)

	executionsBefore := dev.Executions()
	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a, b})
	require.NoError(t, err)
	assert.Equal(t, executionsBefore, dev.Executions(), "backward pass should not execute tapes")
	assert.InDelta(t, -math.Sin(0.4)*math.Cos(0.9), grads[0].At(0), 1e-10)
	assert.InDelta(t, -math.Cos(0.4)*math.Sin(0.9), grads[1].At(0), 1e-10)
}

// TestExecute_ForwardTransformRejected fails fast, before any device
// call.
func TestExecute_ForwardTransformRejected(t *testing.T) {
	dev := simulator.New(1)
	_, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(0.1, 0.2)}, dev,
		paramShift, execute.Options{Mode: execute.ModeForward})
	assert.ErrorIs(t, err, execute.ErrForwardTransform)
	assert.Equal(t, 0, dev.Executions())
}

// TestExecute_ConfigurationErrors covers the remaining fail-fast paths.
func TestExecute_ConfigurationErrors(t *testing.T) {
	dev := simulator.New(1)
	ctx := context.Background()

	_, err := execute.Execute(ctx, nil, dev, paramShift, execute.Options{})
	assert.ErrorIs(t, err, execute.ErrEmptyBatch)

	_, err = execute.Execute(ctx, []*tape.Tape{rotTape(0.1, 0.2)}, dev,
		execute.Gradient{Kind: execute.KindTransform}, execute.Options{})
	assert.ErrorIs(t, err, execute.ErrUnknownGradient)

	_, err = execute.Execute(ctx, []*tape.Tape{rotTape(0.1, 0.2)}, dev,
		execute.Gradient{Kind: execute.GradientKind(99)}, execute.Options{})
	assert.ErrorIs(t, err, execute.ErrUnknownGradient)

	assert.Equal(t, 0, dev.Executions())
}

// TestExecute_SecondOrder compares second derivatives of cos(a)cos(b)
// against the analytic Hessian diagonal and cross term.
func TestExecute_SecondOrder(t *testing.T) {
	dev := simulator.New(1)
	av, bv := 0.4, 0.9

	hess := func(i, j int) float64 {
		a := autodiff.Scalar(av)
		b := autodiff.Scalar(bv)
		out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev, paramShift, execute.Options{})
		require.NoError(t, err)
		inputs := []*autodiff.Value{a, b}
		first, err := autodiff.Grad(out[0], inputs)
		require.NoError(t, err)
		second, err := autodiff.Grad(first[i], inputs)
		require.NoError(t, err)
		return second[j].At(0)
	}

	// d2/da2 = -cos(a)cos(b), d2/dadb = sin(a)sin(b).
	assert.InDelta(t, -math.Cos(av)*math.Cos(bv), hess(0, 0), 1e-8)
	assert.InDelta(t, math.Sin(av)*math.Sin(bv), hess(0, 1), 1e-8)
	assert.InDelta(t, math.Sin(av)*math.Sin(bv), hess(1, 0), 1e-8)
	assert.InDelta(t, -math.Cos(av)*math.Cos(bv), hess(1, 1), 1e-8)
}

// TestExecute_MaxDiffCeiling truncates derivative orders above the
// ceiling to defined zeros while keeping lower orders exact.
func TestExecute_MaxDiffCeiling(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)

	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev,
		paramShift, execute.Options{MaxDiff: 1})
	require.NoError(t, err)

	first, err := autodiff.Grad(out[0], []*autodiff.Value{a})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.4)*math.Cos(0.9), first[0].At(0), 1e-10)

	second, err := autodiff.Grad(first[0], []*autodiff.Value{a})
	require.NoError(t, err)
	assert.Equal(t, 0.0, second[0].At(0))
}

// TestExecute_RaggedBatch mixes a scalar expectation tape with a
// probability-vector tape in one batch.
func TestExecute_RaggedBatch(t *testing.T) {
	dev := simulator.New(2)
	a := autodiff.Scalar(0.4)
	c := autodiff.Scalar(0.9)

	expTape := rotTape(a, 0.0)
	probTape := tape.New(
		[]tape.Operation{{Name: "RX", Wires: []int{0}, Params: []tape.Number{c}}},
		[]tape.Measurement{{Kind: tape.Probs, Wires: []int{0}}},
	)

	out, err := execute.Execute(context.Background(), []*tape.Tape{expTape, probTape}, dev, paramShift, execute.Options{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 1, out[0].Len())
	require.Equal(t, 2, out[1].Len())
	assert.InDelta(t, math.Cos(0.4), out[0].At(0), 1e-10)
	assert.InDelta(t, math.Cos(0.9/2)*math.Cos(0.9/2), out[1].At(0), 1e-10)

	// Reduce the ragged outputs to one scalar cost and differentiate.
	cost := autodiff.Add(out[0], autodiff.Take(out[1], 0))
	grads, err := autodiff.Grad(cost, []*autodiff.Value{a, c})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.4), grads[0].At(0), 1e-10)
	assert.InDelta(t, -math.Sin(0.9)/2, grads[1].At(0), 1e-10)
}

// TestExecute_UntrainableTrackedParameter shows that a tracked value on
// a non-trainable slot is not part of the differentiable surface.
func TestExecute_UntrainableTrackedParameter(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)
	tp := rotTape(a, b)
	require.NoError(t, tp.SetTrainableParams([]int{0}))

	out, err := execute.Execute(context.Background(), []*tape.Tape{tp}, dev, paramShift, execute.Options{})
	require.NoError(t, err)

	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.4)*math.Cos(0.9), grads[0].At(0), 1e-10)

	_, err = autodiff.Grad(out[0], []*autodiff.Value{b})
	assert.ErrorIs(t, err, autodiff.ErrNoGradientPath)
}

// TestExecute_FiniteDiffGradients runs the numeric transform through the
// full execution path.
func TestExecute_FiniteDiffGradients(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)
	b := autodiff.Scalar(0.9)

	out, err := execute.Execute(context.Background(), []*tape.Tape{rotTape(a, b)}, dev,
		execute.Gradient{Kind: execute.KindTransform, Transform: gradients.FiniteDiff(1e-6)},
		execute.Options{MaxDiff: 1})
	require.NoError(t, err)

	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a, b})
	require.NoError(t, err)
	assert.InDelta(t, -math.Sin(0.4)*math.Cos(0.9), grads[0].At(0), 1e-5)
	assert.InDelta(t, -math.Cos(0.4)*math.Sin(0.9), grads[1].At(0), 1e-5)
}

// TestExecute_VarianceGradient differentiates a variance terminal.
func TestExecute_VarianceGradient(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.6)
	tp := tape.New(
		[]tape.Operation{{Name: "RX", Wires: []int{0}, Params: []tape.Number{a}}},
		[]tape.Measurement{{Kind: tape.Var, Observable: tape.PauliZ(0)}},
	)

	out, err := execute.Execute(context.Background(), []*tape.Tape{tp}, dev, paramShift, execute.Options{})
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(0.6)*math.Sin(0.6), out[0].At(0), 1e-10)

	grads, err := autodiff.Grad(out[0], []*autodiff.Value{a})
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(2*0.6), grads[0].At(0), 1e-10)
}

// TestExecute_SharedParameterAccumulates sums gradient contributions of
// one tracked value used by several tapes.
func TestExecute_SharedParameterAccumulates(t *testing.T) {
	dev := simulator.New(1)
	a := autodiff.Scalar(0.4)

	mk := func() *tape.Tape {
		return tape.New(
			[]tape.Operation{{Name: "RX", Wires: []int{0}, Params: []tape.Number{a}}},
			[]tape.Measurement{{Kind: tape.Expval, Observable: tape.PauliZ(0)}},
		)
	}

	out, err := execute.Execute(context.Background(), []*tape.Tape{mk(), mk()}, dev, paramShift, execute.Options{})
	require.NoError(t, err)

	cost := autodiff.Add(out[0], out[1])
	grads, err := autodiff.Grad(cost, []*autodiff.Value{a})
	require.NoError(t, err)
	assert.InDelta(t, -2*math.Sin(0.4), grads[0].At(0), 1e-10)
}
