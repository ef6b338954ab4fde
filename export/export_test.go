package export

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopickle/gopickle"
)

func TestToJSONScalars(t *testing.T) {
	b, err := ToJSON(int64(42))
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(b))

	b, err = ToJSON(gopickle.None{})
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(b))

	b, err = ToJSON("hello")
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, string(b))
}

func TestToJSONContainers(t *testing.T) {
	l := gopickle.List{int64(1), int64(2), "three"}
	b, err := ToJSON(l)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 2, "three"]`, string(b))

	d := gopickle.NewDict()
	d.Set("a", int64(1))
	d.Set("b", int64(2))
	b, err = ToJSON(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "b": 2}`, string(b))
}

func TestToJSONObjectDescriptor(t *testing.T) {
	d := &gopickle.ObjectDescriptor{
		Constructor: "decimal.Decimal",
		Args:        []gopickle.Value{"3.14"},
	}
	b, err := ToJSON(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"constructor": "decimal.Decimal", "args": ["3.14"]}`, string(b))
}

func TestToJSONGlobal(t *testing.T) {
	g := gopickle.Global{Scope: "decimal", Name: "Decimal"}
	b, err := ToJSON(g)
	require.NoError(t, err)
	assert.JSONEq(t, `"decimal.Decimal"`, string(b))
}

func TestCBORCanonicalModeIsDeterministic(t *testing.T) {
	l := gopickle.List{int64(1), "two", true}
	b, err := ToCBOR(l)
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	// two encodes of the same value must be byte-identical under
	// canonical mode, since canonical CBOR has no encoder freedom.
	b2, err := ToCBOR(l)
	require.NoError(t, err)
	assert.Equal(t, b, b2)
}

func TestMsgPackRoundTrip(t *testing.T) {
	d := gopickle.NewDict()
	d.Set("x", int64(1))
	d.Set("y", gopickle.List{int64(1), int64(2)})

	b, err := ToMsgPack(d)
	require.NoError(t, err)

	got, err := FromMsgPack(b)
	require.NoError(t, err)

	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, m["x"])
	assert.Equal(t, []any{int64(1), int64(2)}, toInt64Slice(m["y"]))
}

func TestToJSONBigIntBeyondInt64RendersAsDecimalString(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	b, err := ToJSON(huge)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+huge.String()+`"`, string(b))
}

func TestToMsgPackBigIntRoundTripsAsDecimalString(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	b, err := ToMsgPack(huge)
	require.NoError(t, err)

	got, err := FromMsgPack(b)
	require.NoError(t, err)
	assert.Equal(t, huge.String(), got)
}

func TestUnrepresentableValueErrors(t *testing.T) {
	_, err := ToJSON(struct{ X int }{1})
	assert.Error(t, err)
}

// toInt64Slice normalizes msgpack's decoded numeric types (which may come
// back as int8/int16/uint64 depending on magnitude) to int64 for
// comparison, since FromMsgPack makes no promise about the exact integer
// width it returns.
func toInt64Slice(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]any, len(s))
	for i, e := range s {
		switch n := e.(type) {
		case int64:
			out[i] = n
		case int8:
			out[i] = int64(n)
		case int16:
			out[i] = int64(n)
		case int32:
			out[i] = int64(n)
		case uint64:
			out[i] = int64(n)
		default:
			out[i] = e
		}
	}
	return out
}
