package gopickle

import "fmt"

// setImpl backs both Set and FrozenSet. Python only distinguishes the two
// by mutability (FrozenSet never receives ADDITEMS); the underlying
// storage is identical.
type setImpl struct {
	m *gomapSet
}

func newSetImpl(size int) setImpl {
	return setImpl{m: newGomapSet(size)}
}

func (s setImpl) Add(v Value)      { s.m.Add(v) }
func (s setImpl) Has(v Value) bool { return s.m.Has(v) }
func (s setImpl) Len() int         { return s.m.Len() }

func (s setImpl) Iter() func(yield func(Value) bool) {
	return s.m.Iter()
}

func (s setImpl) String() string {
	items := make([]string, 0, s.Len())
	s.Iter()(func(v Value) bool {
		items = append(items, fmt.Sprintf("%v", v))
		return true
	})
	str := "{"
	for i, it := range items {
		if i > 0 {
			str += ", "
		}
		str += it
	}
	return str + "}"
}

// Set is Python's mutable set.
type Set struct{ setImpl }

// NewSet returns a new, empty Set.
func NewSet() Set { return Set{newSetImpl(0)} }

func (s Set) String() string { return s.setImpl.String() }

// FrozenSet is Python's immutable set. Nothing in the opcode set mutates
// a FrozenSet after FROZENSET builds it.
type FrozenSet struct{ setImpl }

// NewFrozenSet returns a new, empty FrozenSet.
func NewFrozenSet() FrozenSet { return FrozenSet{newSetImpl(0)} }

func (s FrozenSet) String() string { return s.setImpl.String() }
