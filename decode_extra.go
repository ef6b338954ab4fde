package gopickle

import "fmt"

// Decoder decodes a sequence of top-level pickles concatenated in a
// single buffer — a pattern real pickle.dump callers use when streaming
// records to a file, one pickle per record. Each call to Decode resumes
// at the offset the previous call left off; the memo and mark stack are
// fresh for every top-level pickle, matching the protocol (a memo never
// spans a STOP).
type Decoder struct {
	cursor *cursor
	opts   *DecodeOptions
}

// NewDecoder returns a Decoder over data.
func NewDecoder(data []byte, opts *DecodeOptions) *Decoder {
	return &Decoder{cursor: newCursor(data), opts: opts}
}

// Decode decodes the next top-level pickle. Once the input is exhausted
// it returns a nil Value and a non-nil error: call Remaining to check
// first, or rely on DecodeAll.
func (d *Decoder) Decode() (Value, error) {
	if d.cursor.atEnd() {
		return nil, errNoMoreInput
	}
	m := newMachine(d.opts)
	return m.run(d.cursor)
}

// Remaining returns the undecoded bytes; it is empty once every pickle
// has been decoded.
func (d *Decoder) Remaining() []byte {
	return d.cursor.remaining()
}

var errNoMoreInput = fmt.Errorf("gopickle: no more pickles in input")

// DecodeAll decodes every top-level pickle in data in order, returning
// them as a slice. It is a convenience wrapper around Decoder for the
// common case where a caller just wants all records.
func DecodeAll(data []byte, opts *DecodeOptions) ([]Value, error) {
	d := NewDecoder(data, opts)
	var out []Value
	for len(d.Remaining()) > 0 {
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Instruction is one entry of a Disassemble walk: the byte offset of the
// opcode, its mnemonic, and (for opcodes with a fixed-shape operand) the
// decoded operand.
type Instruction struct {
	Offset  int
	Opcode  byte
	Mnemonic string
	Operand Value
}

// Disassemble walks the opcode stream without executing the reduction
// protocol or touching the stack/memo, in the style of CPython's
// pickletools.dis. It is a diagnostic aid for malformed input that Load
// rejects outright — it shares the cursor, the opcode names and the
// 64-bit length guard (readBytesU64) with the real decoder and has no opinion about operand semantics beyond "what shape
// does this opcode's operand have".
func Disassemble(data []byte) ([]Instruction, error) {
	c := newCursor(data)
	var out []Instruction
	for !c.atEnd() {
		offset := c.offset()
		op, err := c.readU8()
		if err != nil {
			return out, err
		}
		instr := Instruction{Offset: offset, Opcode: op, Mnemonic: opcodeName(op)}

		switch op {
		// newline-terminated single-line operand
		case opInt, opLong, opFloat, opString, opUnicode, opGet, opPut, opPersid:
			line, err := c.readLine()
			if err != nil {
				return out, err
			}
			instr.Operand = string(line)

		// two newline-terminated lines
		case opGlobal, opInst:
			l1, err := c.readLine()
			if err != nil {
				return out, err
			}
			l2, err := c.readLine()
			if err != nil {
				return out, err
			}
			instr.Operand = string(l1) + " " + string(l2)

		// fixed-width integer value, not a length prefix
		case opBinInt:
			n, err := c.readU32LESigned()
			if err != nil {
				return out, err
			}
			instr.Operand = int64(n)
		case opBinInt1, opBinGet, opBinPut, opProto:
			n, err := c.readU8()
			if err != nil {
				return out, err
			}
			instr.Operand = int64(n)
		case opBinInt2:
			n, err := c.readU16LE()
			if err != nil {
				return out, err
			}
			instr.Operand = int64(n)
		case opLongBinGet, opLongBinPut:
			n, err := c.readU32LEUnsigned()
			if err != nil {
				return out, err
			}
			instr.Operand = n
		case opBinFloat:
			f, err := c.readF64BE()
			if err != nil {
				return out, err
			}
			instr.Operand = f

		// 1-byte length prefix followed by that many bytes of payload
		case opShortBinString, opShortBinBytes, opShortBinUnicode, opLong1:
			n, err := c.readU8()
			if err != nil {
				return out, err
			}
			if _, err := c.readBytes(int(n)); err != nil {
				return out, err
			}
			instr.Operand = int64(n)

		// 4-byte length prefix followed by that many bytes of payload
		case opBinString, opBinBytes, opBinUnicode, opLong4:
			n, err := c.readU32LEUnsigned()
			if err != nil {
				return out, err
			}
			if _, err := c.readBytes(int(n)); err != nil {
				return out, err
			}
			instr.Operand = n

		// 8-byte length prefix followed by that many bytes of payload
		case opBinUnicode8, opBinBytes8, opByteArray8:
			n, err := c.readU64LE()
			if err != nil {
				return out, err
			}
			if _, err := readBytesU64(c, n, op, offset); err != nil {
				return out, err
			}
			instr.Operand = n

		// 8-byte length, informational only, nothing to skip past it
		case opFrame:
			n, err := c.readU64LE()
			if err != nil {
				return out, err
			}
			instr.Operand = n
		}

		out = append(out, instr)
		if op == opStop {
			break
		}
	}
	return out, nil
}
