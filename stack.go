package gopickle

// machine holds the mutable state of one decode: the operand stack, the
// mark stack, and the memo. It is distinct from Decoder, which additionally
// tracks the cursor position across repeated top-level pickles.
type machine struct {
	stack []Value
	marks []int // indices into stack at which MARK was pushed
	memo  *memo

	opts     *DecodeOptions
	opcode   byte // opcode currently executing, for error context
	offset   int  // offset of the current opcode, for error context
	protocol int  // set by PROTO; 0 until seen
}

// popRaw removes and returns the head of the stack without finalizing it.
// PUT/BINPUT/LONG_BINPUT/MEMOIZE use this: they move the raw (possibly
// still-a-pointer) value into a fresh memo cell and leave a handle in its
// place, so the value is finalized only when a handle to it is popped —
// once per pop, so a handle pushed again by GET is finalized again.
func (m *machine) popRaw() (Value, error) {
	if len(m.stack) == 0 {
		return nil, errStackUnderflow
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// headContainer returns the live value at the top of the stack, following
// one level of memo indirection, without removing it. Mutator opcodes use
// this to reach the container they are about to mutate in place.
func (m *machine) headContainer() (Value, error) {
	if len(m.stack) == 0 {
		return nil, errStackUnderflow
	}
	return m.peekAt(len(m.stack) - 1), nil
}

func newMachine(opts *DecodeOptions) *machine {
	return &machine{memo: newMemo(), opts: opts}
}

func (m *machine) push(v Value) {
	m.stack = append(m.stack, v)
}

// peek returns the raw (possibly memoRef, possibly pointer-shaped) value
// at the head of the stack, without removing or finalizing it. It does not
// follow memo handles; mutator opcodes use headContainer instead.
func (m *machine) peek() (Value, error) {
	if len(m.stack) == 0 {
		return nil, errStackUnderflow
	}
	return m.stack[len(m.stack)-1], nil
}

// peekAt returns the raw value at absolute stack index idx without
// removing it, following one level of memo indirection so callers see the
// live container rather than the handle.
func (m *machine) peekAt(idx int) Value {
	v := m.stack[idx]
	if mr, ok := v.(memoRef); ok {
		return m.memo.cell(mr.handle).v
	}
	return v
}

// pop removes and finalizes the head of the stack.
func (m *machine) pop() (Value, error) {
	if len(m.stack) == 0 {
		return nil, errStackUnderflow
	}
	raw := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return m.finalizeOne(raw)
}

// dup duplicates the head without finalizing; the duplicate is the same
// raw (possibly memoRef) value, matching pickle's DUP semantics where
// both copies must observe later mutation through a shared handle alike.
func (m *machine) dup() error {
	if len(m.stack) == 0 {
		return errStackUnderflow
	}
	m.push(m.stack[len(m.stack)-1])
	return nil
}

// pushMark records the current stack depth as a mark boundary. Unlike the
// teacher's approach of saving and swapping out the whole slice, marks
// here are just recorded depths into the one contiguous stack slice —
// simpler, and just as correct, since pop-to-mark only ever needs the
// most recent mark, and nested marks are naturally LIFO via the marks
// slice itself.
func (m *machine) pushMark() {
	m.marks = append(m.marks, len(m.stack))
}

// marker returns the stack depth of the innermost mark, without
// consuming it.
func (m *machine) marker() (int, error) {
	if len(m.marks) == 0 {
		return 0, errNoMarker
	}
	return m.marks[len(m.marks)-1], nil
}

// popMark discards everything back to and including the innermost mark,
// without finalizing any of it (POP_MARK semantics: pure discard).
func (m *machine) popMark() error {
	k, err := m.marker()
	if err != nil {
		return err
	}
	m.marks = m.marks[:len(m.marks)-1]
	m.stack = m.stack[:k]
	return nil
}

// popToMark removes and finalizes every value above the innermost mark,
// in pickle push order, and then discards the mark itself. No sentinel is
// ever pushed onto m.stack for the mark itself (pushMark only records the
// depth in m.marks), so the region above the mark starts at index k, not
// k+1. The container beneath the mark (if any) is left untouched — callers
// needing to mutate that container use peekAt(k-1) before calling
// popToMark, or after, since popToMark never touches index k-1.
func (m *machine) popToMark() ([]Value, error) {
	k, err := m.marker()
	if err != nil {
		return nil, err
	}
	raw := m.stack[k:]
	out := make([]Value, len(raw))
	for i, v := range raw {
		fv, err := m.finalizeOne(v)
		if err != nil {
			return nil, err
		}
		out[i] = fv
	}
	m.marks = m.marks[:len(m.marks)-1]
	m.stack = m.stack[:k]
	return out, nil
}
