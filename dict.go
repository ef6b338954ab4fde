package gopickle

import (
	"fmt"
)

// Dict is Python's dict, decoded with Python's cross-type key equality:
// int(1), float64(1.0), *big.Int(1), and bool(true) all land on the same
// entry, exactly as they would in a live Python dict. Go's native map
// cannot express that (it requires ==, which treats 1 and 1.0 as distinct
// key types), so Dict is backed by a generic hash map that takes an
// explicit equal/hash pair instead of relying on comparable keys.
//
// Dict's zero value is an invalid, unusable dictionary, same as a nil
// builtin map: construct one with NewDict.
type Dict struct {
	m *gomapMap
}

// NewDict returns a new, empty dictionary.
func NewDict() Dict {
	return NewDictWithSizeHint(0)
}

// NewDictWithSizeHint returns a new, empty dictionary preallocated for
// size entries.
func NewDictWithSizeHint(size int) Dict {
	return Dict{m: newGomapMap(size)}
}

// Get returns the value associated with a key equal to the query, or nil
// if there is none.
func (d Dict) Get(key Value) Value {
	v, _ := d.Get_(key)
	return v
}

// Get_ is the comma-ok form of Get.
func (d Dict) Get_(key Value) (value Value, ok bool) {
	return d.m.Get(key)
}

// Set sets key to value, replacing any existing entry with an equal key.
func (d Dict) Set(key, value Value) {
	d.m.Set(key, value)
}

// Del removes the entry with a key equal to the query, if any.
func (d Dict) Del(key Value) {
	d.m.Delete(key)
}

// Len returns the number of entries.
func (d Dict) Len() int {
	return d.m.Len()
}

// Iter returns an iterator over all entries, in the order they were
// first Set (matching Python's dict, which remembers insertion order;
// re-Set-ing an existing key updates its value without moving it).
func (d Dict) Iter() func(yield func(Value, Value) bool) {
	return d.m.Iter()
}

// String renders the dictionary for debugging, in insertion order.
func (d Dict) String() string {
	s := "{"
	first := true
	d.Iter()(func(k, v Value) bool {
		if !first {
			s += ", "
		}
		first = false
		s += fmt.Sprintf("%v", k) + ": " + fmt.Sprintf("%v", v)
		return true
	})
	return s + "}"
}
