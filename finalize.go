package gopickle

// Resolution is the result a user-supplied ObjectResolver returns: either
// it matched the descriptor and is handing back a replacement value, or it
// declines ("not applicable"). Modeling this as a two-state sum type
// rather than a nullable Value keeps "matched nil" (a valid replacement,
// e.g. None{}) distinct from "declined" — a bare nullable return cannot
// express that distinction.
type Resolution struct {
	ok    bool
	value Value
}

// Resolved returns a Resolution that replaces the descriptor with v.
func Resolved(v Value) Resolution {
	return Resolution{ok: true, value: v}
}

// NotApplicable returns a Resolution declining to handle the descriptor.
func NotApplicable() Resolution {
	return Resolution{}
}

// ObjectResolver is the object_resolver option: given a fully finalized
// ObjectDescriptor, it either replaces it with a native value or declines.
type ObjectResolver func(ObjectDescriptor) Resolution

// PersistentIDResolver is the persistent_id_resolver option: given a
// persistent-id value (already finalized when it came from BINPERSID,
// or a decoded text line for PERSID), it returns the object that id
// stands for.
type PersistentIDResolver func(pid Value) (Value, error)

// finalizeOne is called on every value as it leaves
// the stack, exactly once, so that resolution is naturally post-order —
// a descriptor's nested values were already finalized when they were
// popped to build it.
func (m *machine) finalizeOne(v Value) (Value, error) {
	switch x := v.(type) {
	case memoRef:
		cell := m.memo.cell(x.handle)
		return m.finalizeOne(cell.v)
	case *List:
		return List(*x), nil
	case *ObjectDescriptor:
		return m.finalizeDescriptor(x)
	default:
		return v, nil
	}
}

// finalizeDescriptor applies the built-in resolver and then, if it
// declined, the optional user resolver.
func (m *machine) finalizeDescriptor(d *ObjectDescriptor) (Value, error) {
	if v, ok := builtinResolve(d); ok {
		return v, nil
	}

	if m.opts != nil && m.opts.ObjectResolver != nil {
		res := m.opts.ObjectResolver(*d)
		if res.ok {
			return res.value, nil
		}
	}

	return d, nil
}

// builtinResolve implements the two built-in reductions recognized before
// getattr chaining (so __reduce__ references to bound class methods
// collapse into a plain Global) and bytearray construction.
func builtinResolve(d *ObjectDescriptor) (Value, bool) {
	switch d.Constructor {
	case "builtins.getattr":
		if len(d.Args) == 2 {
			if g, ok := d.Args[0].(Global); ok {
				if name, ok := d.Args[1].(string); ok {
					return Global{Scope: g, Name: name}, true
				}
			}
		}
	case "builtins.bytearray":
		switch len(d.Args) {
		case 0:
			return Bytes{}, true
		case 1:
			if b, ok := d.Args[0].(Bytes); ok {
				return b, true
			}
		}
	}
	return nil, false
}
