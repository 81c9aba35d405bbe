package tape

// Unwrap temporarily replaces every graph-tracking parameter on the given
// tapes with its plain numeric value, so the tapes can be handed to a
// device. It returns a restore function that puts the original parameters
// back; callers must invoke it on every exit path:
//
//	restore := tape.Unwrap(tapes...)
//	defer restore()
//	results, err := dev.BatchExecute(ctx, tapes)
//
// Because restoration runs in a defer, original parameters are restored
// even when the device call panics. Restore is idempotent.
func Unwrap(tapes ...*Tape) (restore func()) {
	type saved struct {
		tape   *Tape
		params []Number
	}
	var originals []saved
	for _, t := range tapes {
		params := t.GetParameters(false)
		boxed := false
		for _, p := range params {
			if IsBoxed(p) {
				boxed = true
				break
			}
		}
		if !boxed {
			continue
		}
		orig := make([]Number, len(params))
		copy(orig, params)
		originals = append(originals, saved{tape: t, params: orig})

		plain := make([]Number, len(params))
		for i, p := range params {
			plain[i] = Float(p)
		}
		// Count and order match GetParameters(false) by construction.
		_ = t.SetParameters(plain, false)
	}
	done := false
	return func() {
		if done {
			return
		}
		done = true
		for _, s := range originals {
			_ = s.tape.SetParameters(s.params, false)
		}
	}
}
