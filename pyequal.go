package gopickle

// Python-compatible equality and hashing for Dict and Set keys/members.
//
// Python's numeric tower treats bool, int, float, and complex as mutually
// comparable and requires hash(a) == hash(b) whenever a == b — 1, 1.0,
// and True all hash identically and compare equal, so they collapse to
// one dict entry. Go's built-in map can't express this (map keys compare
// with ==, which treats int64(1) and float64(1.0) as distinct key types),
// so Dict and Set are backed by github.com/aristanetworks/gomap, a
// generic hash map parameterized by caller-supplied equal/hash functions
// instead of relying on comparable keys.

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"math"
	"math/big"
	"reflect"

	"github.com/aristanetworks/gomap"
)

// gomapMap backs Dict. Python dicts remember insertion order, so besides
// the hash map itself it keeps a parallel slice of keys in the order they
// were first Set, and Iter walks that slice rather than the map's own
// (arbitrary) bucket order.
type gomapMap struct {
	m     *gomap.Map[Value, Value]
	order []Value
}

func newGomapMap(size int) *gomapMap {
	return &gomapMap{
		m:     gomap.NewHint[Value, Value](size, pyEqual, pyHash),
		order: make([]Value, 0, size),
	}
}

func (g *gomapMap) Get(k Value) (Value, bool) { return g.m.Get(k) }

func (g *gomapMap) Set(k, v Value) {
	if _, existed := g.m.Get(k); !existed {
		g.order = append(g.order, k)
	}
	g.m.Set(k, v)
}

func (g *gomapMap) Delete(k Value) {
	if _, ok := g.m.Get(k); !ok {
		return
	}
	g.m.Delete(k)
	for i, ek := range g.order {
		if pyEqual(ek, k) {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *gomapMap) Len() int { return g.m.Len() }

func (g *gomapMap) Iter() func(yield func(Value, Value) bool) {
	return func(yield func(Value, Value) bool) {
		for _, k := range g.order {
			v, ok := g.m.Get(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

type gomapSet struct {
	m *gomap.Map[Value, struct{}]
}

func newGomapSet(size int) *gomapSet {
	return &gomapSet{m: gomap.NewHint[Value, struct{}](size, pyEqual, pyHash)}
}

func (s *gomapSet) Add(v Value)        { s.m.Set(v, struct{}{}) }
func (s *gomapSet) Has(v Value) bool   { _, ok := s.m.Get(v); return ok }
func (s *gomapSet) Len() int           { return s.m.Len() }
func (s *gomapSet) Iter() func(yield func(Value) bool) {
	it := s.m.Iter()
	return func(yield func(Value) bool) {
		for it.Next() {
			if !yield(it.Key()) {
				break
			}
		}
	}
}

// kind classifies a value for the purposes of cross-type numeric
// comparison: bool, the int/uint/float/complex families, *big.Int, and a
// handful of structural buckets (slice, struct, pointer) that fall
// through to generic, element-wise comparison.
type kind uint

const (
	kBool kind = iota
	kInt
	kUint
	kFloat
	kComplex
	kBigInt
	kSlice
	kStruct
	kPointer
	kOther
)

func kindOf(x Value) kind {
	r := reflect.ValueOf(x)
	switch r.Kind() {
	case reflect.Bool:
		return kBool
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		return kInt
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		return kUint
	case reflect.Float64, reflect.Float32:
		return kFloat
	case reflect.Complex128, reflect.Complex64:
		return kComplex
	case reflect.Slice, reflect.Array:
		return kSlice
	case reflect.Struct:
		return kStruct
	}
	if _, ok := x.(*big.Int); ok {
		return kBigInt
	}
	if r.Kind() == reflect.Pointer {
		return kPointer
	}
	return kOther
}

// pyEqual implements equality matching what Python's == would return.
func pyEqual(xa, xb Value) bool {
	switch a := xa.(type) {
	case string:
		b, ok := xb.(string)
		return ok && a == b
	case Bytes:
		b, ok := xb.(Bytes)
		return ok && string(a) == string(b)
	}

	a := reflect.ValueOf(xa)
	b := reflect.ValueOf(xb)
	ak := kindOf(xa)
	bk := kindOf(xb)

	if ak > bk {
		a, b = b, a
		ak, bk = bk, ak
		xa, xb = xb, xa
	}

	switch ak {
	case kBool:
		abint := bint(a.Bool())
		switch bk {
		case kBool:
			return abint == bint(b.Bool())
		case kInt:
			return eqIntInt(abint, b.Int())
		case kUint:
			return eqIntUint(abint, b.Uint())
		case kFloat:
			return float64(abint) == b.Float()
		case kComplex:
			return complex(float64(abint), 0) == b.Complex()
		case kBigInt:
			return eqIntBigInt(abint, xb.(*big.Int))
		}
	case kInt:
		aint := a.Int()
		switch bk {
		case kInt:
			return eqIntInt(aint, b.Int())
		case kUint:
			return eqIntUint(aint, b.Uint())
		case kFloat:
			return float64(aint) == b.Float()
		case kComplex:
			return complex(float64(aint), 0) == b.Complex()
		case kBigInt:
			return eqIntBigInt(aint, xb.(*big.Int))
		}
	case kUint:
		auint := a.Uint()
		switch bk {
		case kUint:
			return auint == b.Uint()
		case kFloat:
			return float64(auint) == b.Float()
		case kComplex:
			return complex(float64(auint), 0) == b.Complex()
		case kBigInt:
			return eqUintBigInt(auint, xb.(*big.Int))
		}
	case kFloat:
		af := a.Float()
		switch bk {
		case kFloat:
			return af == b.Float()
		case kComplex:
			return complex(af, 0) == b.Complex()
		case kBigInt:
			return eqFloatBigInt(af, xb.(*big.Int))
		}
	case kComplex:
		ac := a.Complex()
		switch bk {
		case kComplex:
			return ac == b.Complex()
		case kBigInt:
			if imag(ac) != 0 {
				return false
			}
			return eqFloatBigInt(real(ac), xb.(*big.Int))
		}
	case kBigInt:
		if bk == kBigInt {
			return xa.(*big.Int).Cmp(xb.(*big.Int)) == 0
		}
	case kSlice:
		if bk == kSlice {
			return eqSlice(a, b)
		}
	}

	switch a := xa.(type) {
	case Dict:
		b, ok := xb.(Dict)
		return ok && eqDict(a, b)
	}

	if ak == kStruct && bk == kStruct {
		return eqStruct(a, b)
	}

	return xa == xb
}

func eqIntInt(a, b int64) bool { return a == b }

func eqIntUint(a int64, b uint64) bool {
	if a < 0 {
		return false
	}
	return uint64(a) == b
}

func eqIntBigInt(a int64, b *big.Int) bool {
	return b.IsInt64() && a == b.Int64()
}

func eqUintBigInt(a uint64, b *big.Int) bool {
	return b.IsUint64() && a == b.Uint64()
}

func eqFloatBigInt(a float64, b *big.Int) bool {
	bf, acc := bigIntToFloat64(b)
	return acc == big.Exact && a == bf
}

func eqSlice(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !pyEqual(a.Index(i).Interface(), b.Index(i).Interface()) {
			return false
		}
	}
	return true
}

func eqStruct(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	for i := 0; i < a.NumField(); i++ {
		if !pyEqual(a.Field(i).Interface(), b.Field(i).Interface()) {
			return false
		}
	}
	return true
}

func eqDict(a, b Dict) bool {
	if a.Len() != b.Len() {
		return false
	}
	eq := true
	a.Iter()(func(k, va Value) bool {
		vb, ok := b.Get_(k)
		if !ok || !pyEqual(va, vb) {
			eq = false
			return false
		}
		return true
	})
	return eq
}

// pyHash returns a hash of x consistent with pyEqual: pyEqual(a,b) implies
// pyHash(a) == pyHash(b). It panics with "unhashable type" for Dict, Set,
// FrozenSet, and List, matching Python's refusal to hash mutable
// containers.
func pyHash(seed maphash.Seed, x Value) uint64 {
	switch v := x.(type) {
	case string:
		return maphash.String(seed, v)
	case Bytes:
		return maphash.String(seed, string(v))
	}

	var h maphash.Hash
	h.SetSeed(seed)

	hashUint := func(u uint64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], u)
		h.Write(b[:])
	}
	hashInt := func(i int64) { hashUint(uint64(i)) }
	hashFloat := func(f float64) {
		i := int64(f)
		if float64(i) == f {
			hashInt(i)
		} else {
			hashUint(math.Float64bits(f))
		}
	}

	r := reflect.ValueOf(x)
	switch kindOf(x) {
	case kBool:
		hashInt(bint(r.Bool()))
		return h.Sum64()
	case kInt:
		hashInt(r.Int())
		return h.Sum64()
	case kUint:
		hashUint(r.Uint())
		return h.Sum64()
	case kFloat:
		hashFloat(r.Float())
		return h.Sum64()
	case kComplex:
		c := r.Complex()
		hashFloat(real(c))
		if imag(c) != 0 {
			hashFloat(imag(c))
		}
		return h.Sum64()
	case kBigInt:
		b := x.(*big.Int)
		switch {
		case b.IsInt64():
			hashInt(b.Int64())
		case b.IsUint64():
			hashUint(b.Uint64())
		default:
			f, acc := bigIntToFloat64(b)
			if acc == big.Exact {
				hashFloat(f)
			} else {
				h.WriteString("bigInt")
				h.Write(b.Bytes())
			}
		}
		return h.Sum64()
	case kPointer:
		hashUint(uint64(r.Pointer()))
		return h.Sum64()
	}

	switch v := x.(type) {
	case Tuple:
		h.WriteString("tuple")
		for _, item := range v {
			hashUint(pyHash(seed, item))
		}
		return h.Sum64()
	case Global:
		h.WriteString("global")
		hashUint(pyHash(seed, v.Name))
		if v.Scope != nil {
			hashUint(pyHash(seed, v.Scope))
		}
		return h.Sum64()
	case Dict, Set, FrozenSet:
		panic(fmt.Sprintf("gopickle: unhashable type: %T", x))
	}

	if kindOf(x) == kStruct {
		t := r.Type()
		h.WriteString(t.Name())
		for i := 0; i < t.NumField(); i++ {
			hashUint(pyHash(seed, r.Field(i).Interface()))
		}
		return h.Sum64()
	}

	panic(fmt.Sprintf("gopickle: unhashable type: %T", x))
}

// bigIntToFloat64 converts a *big.Int to the nearest float64, reporting
// whether the conversion was exact — used when comparing or hashing a
// big integer against a float.
func bigIntToFloat64(b *big.Int) (float64, big.Accuracy) {
	f := new(big.Float).SetInt(b)
	v, acc := f.Float64()
	return v, acc
}

func bint(x bool) int64 {
	if x {
		return 1
	}
	return 0
}
