// Package export re-serializes an already-decoded gopickle value tree
// into JSON, CBOR, or MessagePack. It does not decode pickles itself and
// has no access to decoder internals: it consumes gopickle.Value the
// same way any other caller would, after Load has already resolved
// every memo reference and object descriptor it's going to resolve.
package export

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/sugawarayuuta/sonnet"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gopickle/gopickle"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR encode mode: %v", err))
	}
	cborEncMode = em
}

// plain converts a gopickle.Value tree into one built only from types the
// target encoders already know how to walk (map, slice, string, bool,
// numeric, nil), so that struct tags and custom MarshalX methods never
// have to be written for gopickle's own types.
func plain(v gopickle.Value) (any, error) {
	switch x := v.(type) {
	case nil, gopickle.None:
		return nil, nil
	case bool, int64, float64, string:
		return x, nil
	case *big.Int:
		// JSON, CBOR, and MessagePack have no native arbitrary-precision
		// integer type; a decimal string is the lossless representation
		// all three can carry without the receiver having to special-case
		// gopickle's own types.
		return x.String(), nil
	case gopickle.Bytes:
		return []byte(x), nil
	case gopickle.List:
		return plainSlice(x)
	case gopickle.Tuple:
		return plainSlice(x)
	case gopickle.Dict:
		out := make(map[string]any, x.Len())
		var err error
		x.Iter()(func(k, val gopickle.Value) bool {
			var pv any
			pv, err = plain(val)
			if err != nil {
				return false
			}
			out[fmt.Sprint(k)] = pv
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case gopickle.Set:
		return plainSetLike(x.Iter())
	case gopickle.FrozenSet:
		return plainSetLike(x.Iter())
	case gopickle.Global:
		return x.Path(), nil
	case *gopickle.ObjectDescriptor:
		return plainDescriptor(x)
	default:
		return nil, fmt.Errorf("export: cannot represent %T", v)
	}
}

func plainSlice(s []gopickle.Value) (any, error) {
	out := make([]any, len(s))
	for i, e := range s {
		pv, err := plain(e)
		if err != nil {
			return nil, err
		}
		out[i] = pv
	}
	return out, nil
}

func plainSetLike(iter func(func(gopickle.Value) bool)) (any, error) {
	var out []any
	var err error
	iter(func(v gopickle.Value) bool {
		var pv any
		pv, err = plain(v)
		if err != nil {
			return false
		}
		out = append(out, pv)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func plainDescriptor(d *gopickle.ObjectDescriptor) (any, error) {
	args, err := plainSlice(d.Args)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"constructor": d.Constructor,
		"args":        args,
	}
	if d.Kwargs != nil {
		kw := make(map[string]any, len(d.Kwargs))
		for k, v := range d.Kwargs {
			pv, err := plain(v)
			if err != nil {
				return nil, err
			}
			kw[k] = pv
		}
		out["kwargs"] = kw
	}
	if d.State != nil {
		state, err := plain(d.State)
		if err != nil {
			return nil, err
		}
		out["state"] = state
	}
	if len(d.AppendItems) > 0 {
		items, err := plainSlice(d.AppendItems)
		if err != nil {
			return nil, err
		}
		out["append_items"] = items
	}
	if len(d.SetItems) > 0 {
		pairs := make([]any, len(d.SetItems))
		for i, kv := range d.SetItems {
			k, err := plain(kv[0])
			if err != nil {
				return nil, err
			}
			v, err := plain(kv[1])
			if err != nil {
				return nil, err
			}
			pairs[i] = []any{k, v}
		}
		out["set_items"] = pairs
	}
	return out, nil
}

// ToJSON renders a decoded value tree as JSON, using sonnet as a
// drop-in replacement for encoding/json.
func ToJSON(v gopickle.Value) ([]byte, error) {
	p, err := plain(v)
	if err != nil {
		return nil, err
	}
	return sonnet.Marshal(p)
}

// ToCBOR renders a decoded value tree as canonical-mode CBOR, suitable
// for forwarding into a CBOR-speaking service.
func ToCBOR(v gopickle.Value) ([]byte, error) {
	p, err := plain(v)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(p)
}

// ToMsgPack renders a decoded value tree as MessagePack.
func ToMsgPack(v gopickle.Value) ([]byte, error) {
	p, err := plain(v)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(p)
}

// FromMsgPack decodes a MessagePack-encoded value tree back into a
// generic any (map[string]any / []any / scalars), mirroring ToMsgPack's
// flattened representation. It does not attempt to reconstruct
// gopickle.Dict, gopickle.Set, or any other gopickle-specific type: once
// a value has been exported, round-tripping it back through gopickle's
// own types is out of scope.
func FromMsgPack(data []byte) (any, error) {
	var out any
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("export: unmarshal msgpack: %w", err)
	}
	return out, nil
}
