package gopickle

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// DecodeOptions configures a decode. The zero value requests no
// persistent-id resolution, no object resolution, and no tracing.
type DecodeOptions struct {
	// ObjectResolver is consulted, after the built-in resolver declines,
	// for every ObjectDescriptor produced during finalization.
	ObjectResolver ObjectResolver

	// PersistentIDResolver resolves PERSID/BINPERSID opcodes. If nil and
	// one of those opcodes is encountered, decoding fails with
	// MissingResolverError.
	PersistentIDResolver PersistentIDResolver

	// Trace, if set, receives one Debug record per opcode executed:
	// offset, mnemonic, and operand-stack depth. The decoder itself
	// never logs on its own behalf otherwise.
	Trace *slog.Logger
}

// Load decodes a single top-level pickle from data and returns the
// decoded value together with the unconsumed suffix of data.
func Load(data []byte, opts *DecodeOptions) (Value, []byte, error) {
	m := newMachine(opts)
	c := newCursor(data)
	v, err := m.run(c)
	if err != nil {
		return nil, nil, err
	}
	return v, c.remaining(), nil
}

// run executes the interpreter loop until STOP.
func (m *machine) run(c *cursor) (Value, error) {
	for {
		offset := c.offset()
		op, err := c.readU8()
		if err != nil {
			return nil, m.wrap(err, 0, offset)
		}
		m.opcode = op
		m.offset = offset

		if m.opts != nil && m.opts.Trace != nil {
			m.opts.Trace.Debug("gopickle: opcode",
				"offset", offset, "opcode", opcodeName(op), "stackDepth", len(m.stack))
		}

		if op == opStop {
			return m.finishStop(offset)
		}

		if err := m.step(c, op, offset); err != nil {
			return nil, m.wrap(err, op, offset)
		}
	}
}

// wrap promotes the handful of internal sentinel errors to the exported,
// context-carrying error types; anything already typed (produced deeper
// in the call chain, where opcode/offset were already known) passes
// through unchanged.
func (m *machine) wrap(err error, op byte, offset int) error {
	switch err {
	case errStackUnderflow:
		return &StackUnderflowError{Opcode: op, Offset: offset, Detail: "pop on empty stack"}
	case errNoMarker:
		return &StackUnderflowError{Opcode: op, Offset: offset, Detail: "pop to mark with no mark set"}
	case errTruncated:
		return &TruncatedError{Offset: offset, Needed: 1}
	}
	return err
}

func (m *machine) finishStop(offset int) (Value, error) {
	if len(m.marks) != 0 {
		return nil, &StackUnderflowError{Opcode: opStop, Offset: offset, Detail: "STOP with marks still open"}
	}
	if len(m.stack) != 1 {
		return nil, &StackUnderflowError{Opcode: opStop, Offset: offset,
			Detail: fmt.Sprintf("STOP with %d values on stack, want 1", len(m.stack))}
	}
	return m.pop()
}

// step executes one non-STOP opcode.
func (m *machine) step(c *cursor, op byte, offset int) error {
	switch op {

	// ---- machine control / framing ----

	case opProto:
		v, err := c.readU8()
		if err != nil {
			return err
		}
		if v > 5 {
			return &UnsupportedProtocolError{Version: int(v), Offset: offset}
		}
		m.protocol = int(v)
		return nil

	case opFrame:
		_, err := c.readU64LE()
		return err

	// ---- literals ----

	case opNone:
		m.push(None{})
		return nil
	case opNewTrue:
		m.push(true)
		return nil
	case opNewFalse:
		m.push(false)
		return nil

	// ---- integer constructors ----

	case opInt:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		v, err := parseAsciiInt(line, op, offset)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	case opBinInt:
		n, err := c.readU32LESigned()
		if err != nil {
			return err
		}
		m.push(int64(n))
		return nil

	case opBinInt1:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		m.push(int64(n))
		return nil

	case opBinInt2:
		n, err := c.readU16LE()
		if err != nil {
			return err
		}
		m.push(int64(n))
		return nil

	case opLong:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		v, err := parseAsciiLong(line, op, offset)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	case opLong1:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		v, err := c.readSignedLittle(int(n))
		if err != nil {
			return err
		}
		m.push(bigIntOrSmall(v))
		return nil

	case opLong4:
		n, err := c.readU32LESigned()
		if err != nil {
			return err
		}
		if n < 0 {
			return &MalformedOperandError{Opcode: op, Offset: offset, Detail: "LONG4: negative length"}
		}
		v, err := c.readSignedLittle(int(n))
		if err != nil {
			return err
		}
		m.push(bigIntOrSmall(v))
		return nil

	// ---- float constructors ----

	case opFloat:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		f, err := parseAsciiFloat(line, op, offset)
		if err != nil {
			return err
		}
		m.push(f)
		return nil

	case opBinFloat:
		f, err := c.readF64BE()
		if err != nil {
			return err
		}
		m.push(f)
		return nil

	// ---- text / bytes constructors ----

	case opString:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		s, err := unquotePickleString(line, op, offset)
		if err != nil {
			return err
		}
		m.push(Bytes(s))
		return nil

	case opBinString:
		n, err := c.readU32LEUnsigned()
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n))
		if err != nil {
			return err
		}
		m.push(Bytes(data))
		return nil

	case opShortBinString:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n))
		if err != nil {
			return err
		}
		m.push(Bytes(data))
		return nil

	case opUnicode:
		// Obsolete opcode. Kept verbatim rather than
		// applying raw-unicode-escape decoding (see DESIGN.md).
		line, err := c.readLine()
		if err != nil {
			return err
		}
		m.push(string(line))
		return nil

	case opShortBinUnicode:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n))
		if err != nil {
			return err
		}
		m.push(string(data))
		return nil

	case opBinUnicode:
		n, err := c.readU32LEUnsigned()
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n))
		if err != nil {
			return err
		}
		m.push(string(data))
		return nil

	case opBinUnicode8:
		n, err := c.readU64LE()
		if err != nil {
			return err
		}
		data, err := readBytesU64(c, n, op, offset)
		if err != nil {
			return err
		}
		m.push(string(data))
		return nil

	case opShortBinBytes:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n))
		if err != nil {
			return err
		}
		m.push(Bytes(data))
		return nil

	case opBinBytes:
		n, err := c.readU32LEUnsigned()
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n))
		if err != nil {
			return err
		}
		m.push(Bytes(data))
		return nil

	case opBinBytes8:
		n, err := c.readU64LE()
		if err != nil {
			return err
		}
		data, err := readBytesU64(c, n, op, offset)
		if err != nil {
			return err
		}
		m.push(Bytes(data))
		return nil

	case opByteArray8:
		n, err := c.readU64LE()
		if err != nil {
			return err
		}
		data, err := readBytesU64(c, n, op, offset)
		if err != nil {
			return err
		}
		m.push(Bytes(data))
		return nil

	// ---- container constructors ----

	case opEmptyList:
		m.push(&List{})
		return nil
	case opEmptyTuple:
		m.push(Tuple{})
		return nil
	case opEmptyDict:
		m.push(NewDict())
		return nil
	case opEmptySet:
		m.push(NewSet())
		return nil

	case opList:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		l := List(append([]Value{}, items...))
		m.push(&l)
		return nil

	case opTuple:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		m.push(Tuple(items))
		return nil

	case opDict:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		if len(items)%2 != 0 {
			return &MalformedOperandError{Opcode: op, Offset: offset, Detail: "DICT: odd number of items"}
		}
		d := NewDictWithSizeHint(len(items) / 2)
		for i := 0; i < len(items); i += 2 {
			if !dictTrySet(d, items[i], items[i+1]) {
				return &MalformedOperandError{Opcode: op, Offset: offset, Detail: "DICT: key is of an unhashable type"}
			}
		}
		m.push(d)
		return nil

	case opFrozenSet:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		fs := NewFrozenSet()
		for _, v := range items {
			if !frozenSetTryAdd(fs, v) {
				return &MalformedOperandError{Opcode: op, Offset: offset, Detail: "FROZENSET: member is of an unhashable type"}
			}
		}
		m.push(fs)
		return nil

	case opTuple1:
		v1, err := m.pop()
		if err != nil {
			return err
		}
		m.push(Tuple{v1})
		return nil

	case opTuple2:
		v2, err := m.pop()
		if err != nil {
			return err
		}
		v1, err := m.pop()
		if err != nil {
			return err
		}
		m.push(Tuple{v1, v2})
		return nil

	case opTuple3:
		v3, err := m.pop()
		if err != nil {
			return err
		}
		v2, err := m.pop()
		if err != nil {
			return err
		}
		v1, err := m.pop()
		if err != nil {
			return err
		}
		m.push(Tuple{v1, v2, v3})
		return nil

	// ---- container mutators (polymorphic: container or descriptor) ----

	case opAppend:
		v, err := m.pop()
		if err != nil {
			return err
		}
		head, err := m.headContainer()
		if err != nil {
			return err
		}
		return appendOne(head, v, op, offset)

	case opAppends:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		head, err := m.headContainer()
		if err != nil {
			return err
		}
		return appendAll(head, items, op, offset)

	case opSetItem:
		value, err := m.pop()
		if err != nil {
			return err
		}
		key, err := m.pop()
		if err != nil {
			return err
		}
		head, err := m.headContainer()
		if err != nil {
			return err
		}
		return setItemOne(head, key, value, op, offset)

	case opSetItems:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		if len(items)%2 != 0 {
			return &MalformedOperandError{Opcode: op, Offset: offset, Detail: "SETITEMS: odd number of items"}
		}
		pairs := make([][2]Value, len(items)/2)
		for i := range pairs {
			pairs[i] = [2]Value{items[2*i], items[2*i+1]}
		}
		head, err := m.headContainer()
		if err != nil {
			return err
		}
		return setItemsAll(head, pairs, op, offset)

	case opAddItems:
		items, err := m.popToMark()
		if err != nil {
			return err
		}
		head, err := m.headContainer()
		if err != nil {
			return err
		}
		return addItemsAll(head, items, op, offset)

	// ---- stack manipulation ----

	case opPop:
		_, err := m.pop()
		return err
	case opDup:
		return m.dup()
	case opMark:
		m.pushMark()
		return nil
	case opPopMark:
		return m.popMark()

	// ---- memo ----

	case opGet:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		idx, err := parseMemoIndex(line, op, offset)
		if err != nil {
			return err
		}
		return m.pushMemoGet(idx, op, offset)

	case opBinGet:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		return m.pushMemoGet(int(n), op, offset)

	case opLongBinGet:
		n, err := c.readU32LEUnsigned()
		if err != nil {
			return err
		}
		return m.pushMemoGet(int(n), op, offset)

	case opPut:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		idx, err := parseMemoIndex(line, op, offset)
		if err != nil {
			return err
		}
		return m.memoPut(idx)

	case opBinPut:
		n, err := c.readU8()
		if err != nil {
			return err
		}
		return m.memoPut(int(n))

	case opLongBinPut:
		n, err := c.readU32LEUnsigned()
		if err != nil {
			return err
		}
		return m.memoPut(int(n))

	case opMemoize:
		return m.memoPut(m.memo.nextKey())

	// ---- globals ----

	case opGlobal:
		moduleLine, err := c.readLine()
		if err != nil {
			return err
		}
		nameLine, err := c.readLine()
		if err != nil {
			return err
		}
		m.push(Global{Scope: string(moduleLine), Name: string(nameLine)})
		return nil

	case opStackGlobal:
		name, err := m.pop()
		if err != nil {
			return err
		}
		scope, err := m.pop()
		if err != nil {
			return err
		}
		nameStr, ok := name.(string)
		if !ok {
			return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "STACK_GLOBAL: name is not text"}
		}
		m.push(Global{Scope: scope, Name: nameStr})
		return nil

	// ---- reductions ----

	case opReduce:
		return m.doReduce(op, offset)
	case opBuild:
		return m.doBuild(op, offset)
	case opInst:
		return m.doInst(c, op, offset)
	case opObj:
		return m.doObj(op, offset)
	case opNewObj:
		return m.doNewObj(op, offset)
	case opNewObjEx:
		return m.doNewObjEx(op, offset)

	// ---- persistent ids ----

	case opPersid:
		line, err := c.readLine()
		if err != nil {
			return err
		}
		v, err := m.resolvePersistentID(string(line), offset)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	case opBinPersid:
		pid, err := m.pop()
		if err != nil {
			return err
		}
		v, err := m.resolvePersistentID(pid, offset)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	// ---- unsupported ----

	case opExt1, opExt2, opExt4:
		return &UnsupportedFeatureError{Feature: "extension registry", Opcode: op, Offset: offset}
	case opNextBuffer:
		return &UnsupportedFeatureError{Feature: "out-of-band buffers", Opcode: op, Offset: offset}
	case opReadonlyBuffer:
		return nil
	}

	return &UnknownOpcodeError{Opcode: op, Offset: offset}
}

// readBytesU64 guards against declared 64-bit lengths that cannot even be
// addressed on the host (rather than silently truncating, matching the
// boundary-behavior requirement).
func readBytesU64(c *cursor, n uint64, op byte, offset int) ([]byte, error) {
	if n > uint64(math.MaxInt) {
		return nil, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "declared length exceeds addressable range"}
	}
	return c.readBytes(int(n))
}

func parseMemoIndex(line []byte, op byte, offset int) (int, error) {
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "memo index: " + err.Error()}
	}
	return n, nil
}

func (m *machine) pushMemoGet(idx int, op byte, offset int) error {
	mr, ok := m.memo.get(idx)
	if !ok {
		return &MalformedOperandError{Opcode: op, Offset: offset, Detail: fmt.Sprintf("memo key not found: %d", idx)}
	}
	m.push(mr)
	return nil
}

func (m *machine) memoPut(idx int) error {
	v, err := m.popRaw()
	if err != nil {
		return err
	}
	mr := m.memo.put(idx, v)
	m.push(mr)
	return nil
}

func (m *machine) resolvePersistentID(pid Value, offset int) (Value, error) {
	if m.opts == nil || m.opts.PersistentIDResolver == nil {
		return nil, &MissingResolverError{Pid: pid, Offset: offset}
	}
	v, err := m.opts.PersistentIDResolver(pid)
	if err != nil {
		return nil, &ResolverContractError{Detail: err.Error(), Offset: offset}
	}
	return v, nil
}

func (m *machine) doReduce(op byte, offset int) error {
	argsTuple, err := m.pop()
	if err != nil {
		return err
	}
	callable, err := m.pop()
	if err != nil {
		return err
	}
	g, ok := callable.(Global)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "REDUCE: callable is not a global reference"}
	}
	tuple, ok := argsTuple.(Tuple)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "REDUCE: args is not a tuple"}
	}
	m.push(&ObjectDescriptor{Constructor: g.Path(), Args: append([]Value{}, tuple...)})
	return nil
}

func (m *machine) doBuild(op byte, offset int) error {
	state, err := m.pop()
	if err != nil {
		return err
	}
	head, err := m.headContainer()
	if err != nil {
		return err
	}
	d, ok := head.(*ObjectDescriptor)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "BUILD requires an object descriptor head"}
	}
	d.State = state
	return nil
}

func (m *machine) doInst(c *cursor, op byte, offset int) error {
	moduleLine, err := c.readLine()
	if err != nil {
		return err
	}
	nameLine, err := c.readLine()
	if err != nil {
		return err
	}
	args, err := m.popToMark()
	if err != nil {
		return err
	}
	g := Global{Scope: string(moduleLine), Name: string(nameLine)}
	m.push(&ObjectDescriptor{Constructor: g.Path(), Args: args})
	return nil
}

func (m *machine) doObj(op byte, offset int) error {
	items, err := m.popToMark()
	if err != nil {
		return err
	}
	if len(items) < 1 {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "OBJ requires a class followed by args"}
	}
	g, ok := items[0].(Global)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "OBJ: first item is not a class reference"}
	}
	m.push(&ObjectDescriptor{Constructor: g.Path(), Args: items[1:]})
	return nil
}

func (m *machine) doNewObj(op byte, offset int) error {
	argsTuple, err := m.pop()
	if err != nil {
		return err
	}
	class, err := m.pop()
	if err != nil {
		return err
	}
	g, ok := class.(Global)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "NEWOBJ: class is not a global reference"}
	}
	tuple, ok := argsTuple.(Tuple)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "NEWOBJ: args is not a tuple"}
	}
	args := append([]Value{class}, tuple...)
	m.push(&ObjectDescriptor{Constructor: g.Path() + ".__new__", Args: args})
	return nil
}

func (m *machine) doNewObjEx(op byte, offset int) error {
	kwargsVal, err := m.pop()
	if err != nil {
		return err
	}
	argsTupleVal, err := m.pop()
	if err != nil {
		return err
	}
	classVal, err := m.pop()
	if err != nil {
		return err
	}
	g, ok := classVal.(Global)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "NEWOBJ_EX: class is not a global reference"}
	}
	tuple, ok := argsTupleVal.(Tuple)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "NEWOBJ_EX: args is not a tuple"}
	}
	kwargsDict, ok := kwargsVal.(Dict)
	if !ok {
		return &TypeMismatchError{Opcode: op, Offset: offset, Detail: "NEWOBJ_EX: kwargs is not a dict"}
	}
	kwargs := make(map[string]Value, kwargsDict.Len())
	kerr := error(nil)
	kwargsDict.Iter()(func(k, v Value) bool {
		ks, ok := k.(string)
		if !ok {
			kerr = &TypeMismatchError{Opcode: op, Offset: offset, Detail: "NEWOBJ_EX: kwargs key is not text"}
			return false
		}
		kwargs[ks] = v
		return true
	})
	if kerr != nil {
		return kerr
	}
	args := append([]Value{classVal}, tuple...)
	m.push(&ObjectDescriptor{Constructor: g.Path() + ".__new__", Args: args, Kwargs: kwargs})
	return nil
}
