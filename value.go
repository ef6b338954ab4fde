package gopickle

import "math/big"

// Value is the result type of a decode. It is a sum type realized, as is
// idiomatic in Go, by a set of concrete types behind the any interface
// rather than a tagged enum:
//
//	Python               Go
//	None                 gopickle.None{}
//	bool                 bool
//	int (small)          int64
//	int (large)          *big.Int
//	float                float64
//	str                  string
//	bytes/bytearray/str2  gopickle.Bytes
//	list                 gopickle.List
//	tuple                gopickle.Tuple
//	dict                 gopickle.Dict
//	set                  gopickle.Set
//	frozenset            gopickle.FrozenSet
//	class/function ref   gopickle.Global
//	unresolved reduction gopickle.ObjectDescriptor
//
// Legacy protocol-0/1/2 8-bit "str" pickles (STRING, BINSTRING,
// SHORT_BINSTRING) decode to Bytes, not string: the pickle stream never
// records an encoding for these opcodes, so treating the payload as raw
// octets is the only choice that does not guess.
type Value = any

// None is Python's None.
type None struct{}

// Bytes is an octet sequence: Python bytes, bytearray, or a legacy 8-bit
// str value.
type Bytes []byte

// List is a finalized, ordered sequence. During decoding a *List is used
// instead so that APPEND/APPENDS can mutate in place through an aliased
// memo handle; Load always returns the dereferenced List form.
type List []Value

// Tuple is a fixed-arity ordered sequence. Unlike List, nothing in the
// opcode set mutates a tuple after construction, so no pointer indirection
// is needed for it.
type Tuple []Value

// Global is a reference to a Python class or function, identified by a
// dotted path. Scope holds either a string or a nested Global.
type Global struct {
	Scope Value
	Name  string
}

// Path renders the dotted path scope.name, recursing through nested
// Globals.
func (g Global) Path() string {
	switch s := g.Scope.(type) {
	case string:
		return s + "." + g.Name
	case Global:
		return s.Path() + "." + g.Name
	default:
		return g.Name
	}
}

// ObjectDescriptor is the normalized form of a Python object
// reconstruction that the decoder could not (or was not asked to) resolve
// to a native value.
//
// State is nil until BUILD runs; a BUILD with a pickled None sets State to
// None{}, which is a distinct, observable value from the absence of BUILD.
type ObjectDescriptor struct {
	Constructor string
	Args        []Value
	Kwargs      map[string]Value
	State       Value
	AppendItems []Value
	SetItems    [][2]Value
}

// memoRef is an internal handle into the decoder's memo cell store. It is
// never exposed in a finalized Value; finalize always resolves it.
type memoRef struct {
	handle int
}

// bigIntOrSmall normalizes a *big.Int down to int64 when it fits, so
// callers get the narrowest native type the value actually needs while
// still supporting arbitrary precision via *big.Int for everything else.
func bigIntOrSmall(v *big.Int) Value {
	if v.IsInt64() {
		return v.Int64()
	}
	return v
}
