// Package tape implements the quantum tape: an ordered record of quantum
// operations and measurements with an addressable, trainable parameter list.
//
// A tape is the unit of work submitted to a device. Parameters may be plain
// float64 values or graph-tracking values supplied by an autodiff engine;
// the tape never inspects them beyond the Unboxer contract.
package tape

import (
	"fmt"
	"sort"
)

// Unboxer is implemented by graph-tracking parameter values (for example
// scalar autodiff values). Unbox returns the plain numeric value so that a
// device, which operates on concrete numbers only, can execute the tape.
type Unboxer interface {
	Unbox() float64
}

// Number is a circuit parameter: either a float64 or a value implementing
// Unboxer.
type Number = any

// Float returns the plain numeric value of a parameter.
func Float(p Number) float64 {
	switch v := p.(type) {
	case float64:
		return v
	case Unboxer:
		return v.Unbox()
	default:
		panic(fmt.Sprintf("tape: unsupported parameter type %T", p))
	}
}

// IsBoxed reports whether p is a graph-tracking value rather than a plain
// number.
func IsBoxed(p Number) bool {
	_, ok := p.(Unboxer)
	return ok
}

// Operation is a single gate application.
type Operation struct {
	Name   string
	Wires  []int
	Params []Number
}

// MeasurementKind selects what a measurement terminal returns.
type MeasurementKind int

const (
	// Expval is the expectation value of an observable (scalar result).
	Expval MeasurementKind = iota
	// Var is the variance of an observable (scalar result).
	Var
	// Probs is the probability distribution over the computational basis
	// states of a wire subset (vector result of length 2^len(wires)).
	Probs
)

// Observable is a Pauli word: a tensor product of single-qubit Pauli
// operators, e.g. Z(0)⊗X(1). Names and Wires are aligned by position.
type Observable struct {
	Names []string
	Wires []int
}

// PauliZ returns the single-qubit Z observable on the given wire.
func PauliZ(wire int) Observable {
	return Observable{Names: []string{"PauliZ"}, Wires: []int{wire}}
}

// PauliX returns the single-qubit X observable on the given wire.
func PauliX(wire int) Observable {
	return Observable{Names: []string{"PauliX"}, Wires: []int{wire}}
}

// PauliY returns the single-qubit Y observable on the given wire.
func PauliY(wire int) Observable {
	return Observable{Names: []string{"PauliY"}, Wires: []int{wire}}
}

// Tensor returns the tensor product of single-qubit observables.
func Tensor(obs ...Observable) Observable {
	var out Observable
	for _, o := range obs {
		out.Names = append(out.Names, o.Names...)
		out.Wires = append(out.Wires, o.Wires...)
	}
	return out
}

// Measurement is a single measurement terminal.
type Measurement struct {
	Kind       MeasurementKind
	Observable Observable // Expval, Var
	Wires      []int      // Probs
}

// Dim returns the length of this measurement's result.
func (m Measurement) Dim() int {
	if m.Kind == Probs {
		return 1 << len(m.Wires)
	}
	return 1
}

// Tape is an ordered sequence of operations followed by an ordered set of
// measurement terminals.
//
// The flat parameter list is the concatenation of every operation's
// parameters in operation order. Its order is stable for the lifetime of
// the tape: GetParameters and SetParameters always address the same
// positions.
type Tape struct {
	Operations   []Operation
	Measurements []Measurement

	// trainable holds the flat indices of the trainable parameters,
	// sorted ascending. A nil slice means every parameter is trainable.
	trainable []int
}

// New creates a tape from operations and measurements. All parameters are
// trainable by default.
func New(ops []Operation, measurements []Measurement) *Tape {
	return &Tape{Operations: ops, Measurements: measurements}
}

// NumParams returns the total number of parameters on the tape.
func (t *Tape) NumParams() int {
	n := 0
	for _, op := range t.Operations {
		n += len(op.Params)
	}
	return n
}

// TrainableParams returns the sorted flat indices of the trainable
// parameters.
func (t *Tape) TrainableParams() []int {
	if t.trainable == nil {
		idx := make([]int, t.NumParams())
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	out := make([]int, len(t.trainable))
	copy(out, t.trainable)
	return out
}

// SetTrainableParams marks the given flat parameter indices as trainable.
func (t *Tape) SetTrainableParams(indices []int) error {
	n := t.NumParams()
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)
	for i, idx := range sorted {
		if idx < 0 || idx >= n {
			return fmt.Errorf("tape: trainable index %d out of range [0, %d)", idx, n)
		}
		if i > 0 && sorted[i-1] == idx {
			return fmt.Errorf("tape: duplicate trainable index %d", idx)
		}
	}
	t.trainable = sorted
	return nil
}

// NumTrainable returns the number of trainable parameters.
func (t *Tape) NumTrainable() int {
	if t.trainable == nil {
		return t.NumParams()
	}
	return len(t.trainable)
}

// isTrainable reports whether the flat index is trainable.
func (t *Tape) isTrainable(idx int) bool {
	if t.trainable == nil {
		return true
	}
	i := sort.SearchInts(t.trainable, idx)
	return i < len(t.trainable) && t.trainable[i] == idx
}

// GetParameters returns the flat ordered parameter list. With trainableOnly
// set, only trainable parameters are returned, in flat-index order.
func (t *Tape) GetParameters(trainableOnly bool) []Number {
	var out []Number
	idx := 0
	for _, op := range t.Operations {
		for _, p := range op.Params {
			if !trainableOnly || t.isTrainable(idx) {
				out = append(out, p)
			}
			idx++
		}
	}
	return out
}

// SetParameters replaces parameter values in place. The values must have
// the same count and order as the corresponding GetParameters call.
func (t *Tape) SetParameters(values []Number, trainableOnly bool) error {
	want := t.NumParams()
	if trainableOnly {
		want = t.NumTrainable()
	}
	if len(values) != want {
		return fmt.Errorf("tape: expected %d parameter values, got %d", want, len(values))
	}
	vi := 0
	idx := 0
	for oi := range t.Operations {
		for pi := range t.Operations[oi].Params {
			if !trainableOnly || t.isTrainable(idx) {
				t.Operations[oi].Params[pi] = values[vi]
				vi++
			}
			idx++
		}
	}
	return nil
}

// NumericParameters returns the flat parameter list as plain float64
// values, unboxing any graph-tracking values.
func (t *Tape) NumericParameters(trainableOnly bool) []float64 {
	params := t.GetParameters(trainableOnly)
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = Float(p)
	}
	return out
}

// OutputDim returns the total length of the tape's result vector: the sum
// of the dimensions of its measurement terminals.
func (t *Tape) OutputDim() int {
	n := 0
	for _, m := range t.Measurements {
		n += m.Dim()
	}
	return n
}

// NumWires returns one past the highest wire index used by the tape.
func (t *Tape) NumWires() int {
	max := -1
	for _, op := range t.Operations {
		for _, w := range op.Wires {
			if w > max {
				max = w
			}
		}
	}
	for _, m := range t.Measurements {
		for _, w := range m.Wires {
			if w > max {
				max = w
			}
		}
		for _, w := range m.Observable.Wires {
			if w > max {
				max = w
			}
		}
	}
	return max + 1
}

// Copy returns a tape with the same structure and fresh parameter storage.
// With the values argument non-nil, the trainable parameters are replaced
// by the given values (same count and order as GetParameters(true)).
func (t *Tape) Copy(values []Number) (*Tape, error) {
	ops := make([]Operation, len(t.Operations))
	for i, op := range t.Operations {
		params := make([]Number, len(op.Params))
		copy(params, op.Params)
		ops[i] = Operation{Name: op.Name, Wires: op.Wires, Params: params}
	}
	ms := make([]Measurement, len(t.Measurements))
	copy(ms, t.Measurements)
	out := &Tape{Operations: ops, Measurements: ms}
	if t.trainable != nil {
		out.trainable = make([]int, len(t.trainable))
		copy(out.trainable, t.trainable)
	}
	if values != nil {
		if err := out.SetParameters(values, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}
