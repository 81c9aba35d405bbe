package tape

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is the wire form of a tape. Parameters are stored as plain
// numbers: graph-tracking values are unboxed on encode, so a decoded tape
// carries no autodiff state.
type Snapshot struct {
	Operations   []OperationSnapshot   `cbor:"ops"`
	Measurements []MeasurementSnapshot `cbor:"measurements"`
	Trainable    []int                 `cbor:"trainable,omitempty"`
}

// OperationSnapshot is the wire form of a single gate application.
type OperationSnapshot struct {
	Name   string    `cbor:"name"`
	Wires  []int     `cbor:"wires"`
	Params []float64 `cbor:"params,omitempty"`
}

// MeasurementSnapshot is the wire form of a measurement terminal.
type MeasurementSnapshot struct {
	Kind     int      `cbor:"kind"`
	ObsNames []string `cbor:"obs_names,omitempty"`
	ObsWires []int    `cbor:"obs_wires,omitempty"`
	Wires    []int    `cbor:"wires,omitempty"`
}

// Marshal encodes the tape as CBOR.
func Marshal(t *Tape) ([]byte, error) {
	snap := Snapshot{}
	for _, op := range t.Operations {
		params := make([]float64, len(op.Params))
		for i, p := range op.Params {
			params[i] = Float(p)
		}
		snap.Operations = append(snap.Operations, OperationSnapshot{
			Name: op.Name, Wires: op.Wires, Params: params,
		})
	}
	for _, m := range t.Measurements {
		snap.Measurements = append(snap.Measurements, MeasurementSnapshot{
			Kind:     int(m.Kind),
			ObsNames: m.Observable.Names,
			ObsWires: m.Observable.Wires,
			Wires:    m.Wires,
		})
	}
	snap.Trainable = t.trainable
	return cbor.Marshal(snap)
}

// Unmarshal decodes a CBOR-encoded tape.
func Unmarshal(data []byte) (*Tape, error) {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("tape: decode: %w", err)
	}
	t := &Tape{}
	for _, op := range snap.Operations {
		params := make([]Number, len(op.Params))
		for i, v := range op.Params {
			params[i] = v
		}
		t.Operations = append(t.Operations, Operation{
			Name: op.Name, Wires: op.Wires, Params: params,
		})
	}
	for _, m := range snap.Measurements {
		t.Measurements = append(t.Measurements, Measurement{
			Kind:       MeasurementKind(m.Kind),
			Observable: Observable{Names: m.ObsNames, Wires: m.ObsWires},
			Wires:      m.Wires,
		})
	}
	if snap.Trainable != nil {
		if err := t.SetTrainableParams(snap.Trainable); err != nil {
			return nil, fmt.Errorf("tape: decode: %w", err)
		}
	}
	return t, nil
}
