// Package gopickle decodes Python's pickle serialization format,
// protocol versions 0 through 5.
//
//	v, remaining, err := gopickle.Load(data, nil)
//
// v is interface{} (Value) holding the decoded Python object; remaining
// is whatever bytes followed the pickle's STOP opcode.
//
// The following table summarizes the mapping of basic types between
// Python and Go:
//
//	Python                 Go
//	------                 --
//	None              ↔    gopickle.None{}
//	bool              ↔    bool
//	int (small)       ↔    int64
//	int (large)       ↔    *big.Int
//	float             ↔    float64
//	str (py3 unicode) ↔    string
//	bytes             ↔    gopickle.Bytes
//	bytearray         →    gopickle.Bytes
//	str (py2 8-bit)   →    gopickle.Bytes   (+)
//	list              ↔    gopickle.List
//	tuple             ↔    gopickle.Tuple
//	dict              ↔    gopickle.Dict
//	set               ↔    gopickle.Set
//	frozenset         ↔    gopickle.FrozenSet
//
// Classes, functions, and instances that cannot be mapped to a native Go
// value are represented as Global (a dotted reference) and
// ObjectDescriptor (a normalized record of the constructor call,
// arguments, and state pickle used to build the object), for example:
//
//	Python                      Go
//	------                      --
//	decimal.Decimal        ↔    gopickle.Global{"decimal", "Decimal"}
//	decimal.Decimal("3.14")↔    &gopickle.ObjectDescriptor{
//					Constructor: "decimal.Decimal",
//					Args: []gopickle.Value{"3.14"},
//				}
//
// A caller who wants ObjectDescriptors of a particular constructor
// turned into a native Go value supplies DecodeOptions.ObjectResolver.
// Because this package never executes Python code or calls into a
// default class resolution table, decoding a pickle from an untrusted
// source is safe in the sense that it cannot run arbitrary code — unlike
// Python's own unpickler, which can (e.g. via a crafted __reduce__
// calling os.system).
//
// # Pickle protocol versions
//
// Protocol 0 is human-readable ASCII; protocols 1 and 2 add binary
// encodings for the same opcodes, backward-compatibly. Protocol 2 is the
// last protocol understood by Python 2's pickle module. Protocol 3 adds
// bytes support for Python 3. Protocol 4 switches fully to binary
// framing (FRAME) and a flat, implicit memo index (MEMOIZE). Protocol 5
// adds BYTEARRAY8, decoded to Bytes, and the out-of-band buffer opcodes:
// NEXT_BUFFER fails with UnsupportedFeatureError and READONLY_BUFFER is
// accepted and ignored. Load auto-detects the
// protocol from the PROTO opcode and requires no configuration from the
// caller.
//
// # Persistent references
//
// Pickle was originally designed for ZODB (http://zodb.org), where
// on-disk objects reference each other the way in-memory objects do.
// PERSID/BINPERSID opcodes carry such a reference; DecodeOptions.PersistentIDResolver
// hooks into that, letting a caller resolve the reference to, say, a
// freshly loaded database object. Absent a resolver, encountering either
// opcode is a fatal MissingResolverError.
//
// --------
//
// (+) pickle never records an encoding for the legacy 8-bit str opcodes
// (STRING, BINSTRING, SHORT_BINSTRING), so treating the payload as
// Bytes rather than guessing an encoding is the only choice that does
// not silently corrupt non-ASCII data.
package gopickle
