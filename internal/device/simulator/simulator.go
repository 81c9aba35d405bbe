// Package simulator implements a dense statevector simulator device.
//
// The simulator executes tape batches exactly (no sampling noise) and
// provides a device-native adjoint-method gradient procedure, making it
// both a GradientDevice and a ForwardDevice.
package simulator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/mat"

	"github.com/varq-ml/varq/internal/device"
	"github.com/varq-ml/varq/internal/parallel"
	"github.com/varq-ml/varq/internal/tape"
)

var tracer = otel.Tracer("varq-simulator")

// Simulator is a dense statevector simulator over a fixed number of wires.
// It is not safe for concurrent use; the execution model is synchronous
// call-and-return.
type Simulator struct {
	wires      int
	executions int
	par        parallel.Config
}

// New creates a simulator with the given number of wires. Tapes within a
// batch are independent and run on parallel workers.
func New(wires int) *Simulator {
	return &Simulator{wires: wires, par: parallel.DefaultConfig()}
}

// Name identifies the device.
func (s *Simulator) Name() string {
	return fmt.Sprintf("statevector(%d)", s.wires)
}

// Wires returns the number of wires.
func (s *Simulator) Wires() int {
	return s.wires
}

// Executions returns the total number of tapes executed so far. Jacobian
// computation via Gradients does not count as an execution.
func (s *Simulator) Executions() int {
	return s.executions
}

// run simulates a single tape and returns its concatenated measurement
// results.
func (s *Simulator) run(t *tape.Tape) ([]float64, *state, error) {
	if n := t.NumWires(); n > s.wires {
		return nil, nil, fmt.Errorf("simulator: tape uses %d wires, device has %d", n, s.wires)
	}
	st := newState(s.wires)
	for _, op := range t.Operations {
		if err := st.apply(op); err != nil {
			return nil, nil, err
		}
	}
	res, err := st.measure(t)
	if err != nil {
		return nil, nil, err
	}
	return res, st, nil
}

// BatchExecute runs every tape in the batch.
func (s *Simulator) BatchExecute(ctx context.Context, tapes []*tape.Tape) ([][]float64, error) {
	_, span := tracer.Start(ctx, "BatchExecute")
	span.SetAttributes(attribute.Int("batch.size", len(tapes)))
	defer span.End()

	device.BatchesExecuted.Inc()
	results := make([][]float64, len(tapes))
	err := parallel.For(len(tapes), func(i int) error {
		res, _, err := s.run(tapes[i])
		if err != nil {
			return err
		}
		results[i] = res
		device.CircuitsExecuted.Inc()
		return nil
	}, s.par)
	if err != nil {
		return nil, err
	}
	s.executions += len(tapes)
	log.Debug().Int("batch", len(tapes)).Str("device", s.Name()).Msg("executed tape batch")
	return results, nil
}

// ExecuteAndGradients runs the batch and computes adjoint-method Jacobians
// in the same pass (forward accumulation).
func (s *Simulator) ExecuteAndGradients(ctx context.Context, tapes []*tape.Tape) ([][]float64, []*mat.Dense, error) {
	_, span := tracer.Start(ctx, "ExecuteAndGradients")
	span.SetAttributes(attribute.Int("batch.size", len(tapes)))
	defer span.End()

	device.BatchesExecuted.Inc()
	results := make([][]float64, len(tapes))
	jacs := make([]*mat.Dense, len(tapes))
	err := parallel.For(len(tapes), func(i int) error {
		res, jac, err := s.adjointJacobian(tapes[i])
		if err != nil {
			return err
		}
		results[i] = res
		jacs[i] = jac
		device.CircuitsExecuted.Inc()
		return nil
	}, s.par)
	if err != nil {
		return nil, nil, err
	}
	s.executions += len(tapes)
	device.JacobiansComputed.Add(float64(len(tapes)))
	return results, jacs, nil
}

// Gradients computes adjoint-method Jacobians for every tape in the batch.
// This is the device-native gradient procedure: it exposes no derivative
// information of its own, so it supports first-order differentiation only.
func (s *Simulator) Gradients(ctx context.Context, tapes []*tape.Tape) ([]*mat.Dense, error) {
	_, span := tracer.Start(ctx, "Gradients")
	span.SetAttributes(attribute.Int("batch.size", len(tapes)))
	defer span.End()

	jacs := make([]*mat.Dense, len(tapes))
	err := parallel.For(len(tapes), func(i int) error {
		_, jac, err := s.adjointJacobian(tapes[i])
		if err != nil {
			return err
		}
		jacs[i] = jac
		return nil
	}, s.par)
	if err != nil {
		return nil, err
	}
	device.JacobiansComputed.Add(float64(len(tapes)))
	return jacs, nil
}

var _ device.GradientDevice = (*Simulator)(nil)
var _ device.ForwardDevice = (*Simulator)(nil)
