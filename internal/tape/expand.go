package tape

// Expand lowers composite gates to primitive ones, returning a new tape.
// The flat parameter order is preserved: each composite gate's parameters
// map positionally onto the parameters of its decomposition, so trainable
// indices remain valid on the expanded tape.
//
// Currently expanded:
//
//	Rot(phi, theta, omega) -> RZ(phi) RY(theta) RZ(omega)
func (t *Tape) Expand() *Tape {
	var ops []Operation
	for _, op := range t.Operations {
		switch op.Name {
		case "Rot":
			ops = append(ops,
				Operation{Name: "RZ", Wires: op.Wires, Params: []Number{op.Params[0]}},
				Operation{Name: "RY", Wires: op.Wires, Params: []Number{op.Params[1]}},
				Operation{Name: "RZ", Wires: op.Wires, Params: []Number{op.Params[2]}},
			)
		default:
			ops = append(ops, op)
		}
	}
	out := &Tape{Operations: ops, Measurements: t.Measurements}
	if t.trainable != nil {
		out.trainable = make([]int, len(t.trainable))
		copy(out.trainable, t.trainable)
	}
	return out
}
