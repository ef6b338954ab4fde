package gopickle

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
)

// hexBytes decodes hex-encoded data with whitespace removed, so test
// tables can be written the way pickle bytes are usually quoted in
// documentation (space-separated pairs). It panics on malformed hex,
// since every caller here is a literal test fixture.
func hexBytes(s string) []byte {
	s = strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func bigIntFromString(s string) *big.Int {
	i := new(big.Int)
	if _, ok := i.SetString(s, 10); !ok {
		panic("bigIntFromString: " + s)
	}
	return i
}

func TestLoadScenarios(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          Value
		wantRemaining []byte
	}{
		{
			name:  "integer 1, protocol 4",
			input: "80 04 4B 01 2E",
			want:  int64(1),
		},
		{
			name:  "utf-8 text with astral codepoint, protocol 4",
			input: "80 04 95 0D 00 00 00 00 00 00 00 8C 09 74 65 73 74 20 F0 9F 98 BA 94 2E",
			want:  "test \U0001F63A",
		},
		{
			name:          "trailing bytes preserved",
			input:         "80 04 4B 01 2E 00 00 00 00",
			want:          int64(1),
			wantRemaining: []byte{0, 0, 0, 0},
		},
		{
			name:  "protocol-0 list built with MARK/LIST/PUT/APPEND",
			input: "28 6C 70 30 0A 49 31 0A 61 49 32 0A 61 2E",
			want:  List{int64(1), int64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, remaining, err := Load(hexBytes(tt.input), nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !deepValueEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
			if !bytesEqual(remaining, tt.wantRemaining) {
				t.Errorf("remaining = %v, want %v", remaining, tt.wantRemaining)
			}
		})
	}
}

func TestLoadSet(t *testing.T) {
	input := hexBytes("80 04 95 09 00 00 00 00 00 00 00 8F 94 28 4B 01 4B 02 90 2E")
	got, _, err := Load(input, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, ok := got.(Set)
	if !ok {
		t.Fatalf("got %T, want Set", got)
	}
	if s.Len() != 2 || !s.Has(int64(1)) || !s.Has(int64(2)) {
		t.Errorf("got %v, want {1, 2}", s)
	}
}

func TestLoadSharedListAcrossTupleSlots(t *testing.T) {
	input := hexBytes("80 04 95 0D 00 00 00 00 00 00 00 5D 94 28 4B 01 4B 02 65 68 00 86 94 2E")
	got, _, err := Load(input, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tup, ok := got.(Tuple)
	if !ok || len(tup) != 2 {
		t.Fatalf("got %#v, want a 2-tuple", got)
	}
	for i, slot := range tup {
		l, ok := slot.(List)
		if !ok {
			t.Fatalf("slot %d: got %T, want List", i, slot)
		}
		if !deepValueEqual(l, List{int64(1), int64(2)}) {
			t.Errorf("slot %d: got %v, want [1 2]", i, l)
		}
	}
}

func TestLoadReduceProducesObjectDescriptor(t *testing.T) {
	// GLOBAL "datetime" "date"; SHORT_BINBYTES 4 <4 bytes>; TUPLE1; REDUCE; STOP
	var input []byte
	input = append(input, opGlobal)
	input = append(input, []byte("datetime\ndate\n")...)
	input = append(input, opShortBinBytes, 4, 1, 2, 3, 4)
	input = append(input, opTuple1)
	input = append(input, opReduce)
	input = append(input, opStop)

	got, _, err := Load(input, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d, ok := got.(*ObjectDescriptor)
	if !ok {
		t.Fatalf("got %T, want *ObjectDescriptor", got)
	}
	if d.Constructor != "datetime.date" {
		t.Errorf("constructor = %q, want datetime.date", d.Constructor)
	}
	if len(d.Args) != 1 || !deepValueEqual(d.Args[0], Bytes{1, 2, 3, 4}) {
		t.Errorf("args = %#v, want [Bytes{1,2,3,4}]", d.Args)
	}

	opts := &DecodeOptions{
		ObjectResolver: func(d ObjectDescriptor) Resolution {
			if d.Constructor == "datetime.date" {
				return Resolved("resolved-date")
			}
			return NotApplicable()
		},
	}
	got2, _, err := Load(input, opts)
	if err != nil {
		t.Fatalf("Load with resolver: %v", err)
	}
	if got2 != "resolved-date" {
		t.Errorf("got %#v, want resolved-date", got2)
	}
}

func TestLoadMissingPersistentIDResolver(t *testing.T) {
	input := hexBytes("50 61 0A 2E") // PERSID "a" STOP
	_, _, err := Load(input, nil)
	var target *MissingResolverError
	if !errors.As(err, &target) {
		t.Fatalf("got %v (%T), want *MissingResolverError", err, err)
	}
}

func TestLoadBinPersidWithResolver(t *testing.T) {
	input := append([]byte{opShortBinString, 1, 'x'}, opBinPersid, opStop)
	opts := &DecodeOptions{
		PersistentIDResolver: func(pid Value) (Value, error) {
			b, ok := pid.(Bytes)
			if !ok {
				return nil, errors.New("unexpected pid type")
			}
			return "resolved:" + string(b), nil
		},
	}
	got, _, err := Load(input, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "resolved:x" {
		t.Errorf("got %#v, want resolved:x", got)
	}
}

func TestLoadUnsupportedProtocol(t *testing.T) {
	input := []byte{opProto, 6, opStop}
	_, _, err := Load(input, nil)
	var target *UnsupportedProtocolError
	if !errors.As(err, &target) {
		t.Fatalf("got %v (%T), want *UnsupportedProtocolError", err, err)
	}
	if target.Version != 6 {
		t.Errorf("Version = %d, want 6", target.Version)
	}
}

func TestLoadUnknownOpcode(t *testing.T) {
	_, _, err := Load([]byte{0xFF}, nil)
	var target *UnknownOpcodeError
	if !errors.As(err, &target) {
		t.Fatalf("got %v (%T), want *UnknownOpcodeError", err, err)
	}
}

func TestLoadExtensionRegistryUnsupported(t *testing.T) {
	input := []byte{opExt1, 1, opStop}
	_, _, err := Load(input, nil)
	var target *UnsupportedFeatureError
	if !errors.As(err, &target) {
		t.Fatalf("got %v (%T), want *UnsupportedFeatureError", err, err)
	}
}

func TestLoadStopWithMultipleValuesLeftOnStack(t *testing.T) {
	input := []byte{opBinInt1, 1, opBinInt1, 2, opStop}
	_, _, err := Load(input, nil)
	var target *StackUnderflowError
	if !errors.As(err, &target) {
		t.Fatalf("got %v (%T), want *StackUnderflowError", err, err)
	}
}

func TestLong1BoundaryValues(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  Value
	}{
		{"zero length", []byte{}, int64(0)},
		{"single positive byte", []byte{0x7F}, int64(127)},
		{"single negative byte", []byte{0xFF}, int64(-1)},
		{"two bytes positive", []byte{0x00, 0x01}, int64(256)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := append([]byte{opLong1, byte(len(tt.bytes))}, tt.bytes...)
			input = append(input, opStop)
			got, _, err := Load(input, nil)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !deepValueEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLongBeyondInt64PromotesToBigInt(t *testing.T) {
	// LONG1 with 9 bytes of 0x01 each, positive: a value well beyond int64.
	payload := make([]byte, 9)
	for i := range payload {
		payload[i] = 0x01
	}
	input := append([]byte{opLong1, byte(len(payload))}, payload...)
	input = append(input, opStop)
	got, _, err := Load(input, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, ok := got.(*big.Int)
	if !ok {
		t.Fatalf("got %T, want *big.Int", got)
	}
	if b.Sign() <= 0 {
		t.Errorf("got %v, want a large positive integer", b)
	}
}

func TestEmptyContainers(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		got, _, err := Load([]byte{opEmptyList, opStop}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if l, ok := got.(List); !ok || len(l) != 0 {
			t.Errorf("got %#v, want empty List", got)
		}
	})
	t.Run("empty dict", func(t *testing.T) {
		got, _, err := Load([]byte{opEmptyDict, opStop}, nil)
		if err != nil {
			t.Fatal(err)
		}
		d, ok := got.(Dict)
		if !ok || d.Len() != 0 {
			t.Errorf("got %#v, want empty Dict", got)
		}
	})
	t.Run("empty set", func(t *testing.T) {
		got, _, err := Load([]byte{opEmptySet, opStop}, nil)
		if err != nil {
			t.Fatal(err)
		}
		s, ok := got.(Set)
		if !ok || s.Len() != 0 {
			t.Errorf("got %#v, want empty Set", got)
		}
	})
	t.Run("empty tuple", func(t *testing.T) {
		got, _, err := Load([]byte{opEmptyTuple, opStop}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if tup, ok := got.(Tuple); !ok || len(tup) != 0 {
			t.Errorf("got %#v, want empty Tuple", got)
		}
	})
}

func TestDecodeIsDeterministic(t *testing.T) {
	input := hexBytes("80 04 95 0D 00 00 00 00 00 00 00 5D 94 28 4B 01 4B 02 65 68 00 86 94 2E")
	got1, _, err := Load(input, nil)
	if err != nil {
		t.Fatal(err)
	}
	got2, _, err := Load(input, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !deepValueEqual(got1, got2) {
		t.Errorf("non-deterministic decode: %#v != %#v", got1, got2)
	}
}

func TestByteAccountingAcrossBatch(t *testing.T) {
	inputs := []string{
		"80 04 4B 01 2E",
		"80 04 95 09 00 00 00 00 00 00 00 8F 94 28 4B 01 4B 02 90 2E",
	}
	for _, hx := range inputs {
		data := hexBytes(hx)
		_, remaining, err := Load(data, nil)
		if err != nil {
			t.Fatal(err)
		}
		consumed := len(data) - len(remaining)
		if consumed+len(remaining) != len(data) {
			t.Errorf("byte accounting broken for %q", hx)
		}
	}
}

// deepValueEqual compares two Values the way Python's == would, for test
// assertions that need to look inside List/Tuple/Dict/Set, not just
// compare top-level interface identity.
func deepValueEqual(a, b Value) bool {
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		return ok && sliceEqual([]Value(x), []Value(y))
	case Tuple:
		y, ok := b.(Tuple)
		return ok && sliceEqual([]Value(x), []Value(y))
	case Bytes:
		y, ok := b.(Bytes)
		return ok && string(x) == string(y)
	default:
		return pyEqualOrIdentical(a, b)
	}
}

func sliceEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !deepValueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// pyEqualOrIdentical falls back to pyEqual, which already implements
// Python's cross-type numeric equality, for anything deepValueEqual
// doesn't special-case structurally.
func pyEqualOrIdentical(a, b Value) bool {
	return pyEqual(a, b)
}

func bytesEqual(got, want []byte) bool {
	if len(want) == 0 {
		return len(got) == 0
	}
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
