package gopickle

// Conversions between decoded Values and plain Go types, for callers who
// don't want to switch on the full Value variant set themselves.

import (
	"fmt"
	"math/big"
)

// AsInt64 represents a decoded integer as int64, independent of whether
// it arrived as a small int (int64) or an arbitrary-precision one
// (*big.Int).
func AsInt64(x Value) (int64, error) {
	switch x := x.(type) {
	case int64:
		return x, nil
	case *big.Int:
		if !x.IsInt64() {
			return 0, fmt.Errorf("gopickle: long outside of int64 range")
		}
		return x.Int64(), nil
	}
	return 0, fmt.Errorf("gopickle: expected int64 or *big.Int; got %T", x)
}

// AsBytes represents a decoded Value as Bytes. It succeeds only for
// Bytes.
func AsBytes(x Value) (Bytes, error) {
	if b, ok := x.(Bytes); ok {
		return b, nil
	}
	return nil, fmt.Errorf("gopickle: expected Bytes; got %T", x)
}

// AsString represents a decoded Value as a Go string. It succeeds only
// for the Text variant (plain Go string).
func AsString(x Value) (string, error) {
	if s, ok := x.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("gopickle: expected string; got %T", x)
}
