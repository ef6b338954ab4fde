package gopickle

// Pickle opcode bytes, as defined by CPython's pickle module and
// documented in pickletools. The opcode space is sparse, dispatched by
// a big switch rather than an array-indexed jump table; these constants
// are just the switch's case values, not a byte-range encoding of
// anything structured.
const (
	opMark            = 0x28 // (
	opStop             = 0x2e // .
	opPop              = 0x30 // 0
	opPopMark          = 0x31 // 1
	opDup              = 0x32 // 2
	opFloat            = 0x46 // F
	opInt              = 0x49 // I
	opBinInt           = 0x4a // J
	opBinInt1          = 0x4b // K
	opLong             = 0x4c // L
	opBinInt2          = 0x4d // M
	opNone             = 0x4e // N
	opPersid           = 0x50 // P
	opBinPersid        = 0x51 // Q
	opReduce           = 0x52 // R
	opString           = 0x53 // S
	opBinString        = 0x54 // T
	opShortBinString   = 0x55 // U
	opUnicode          = 0x56 // V
	opBinUnicode       = 0x58 // X
	opAppend           = 0x61 // a
	opBuild            = 0x62 // b
	opGlobal           = 0x63 // c
	opDict             = 0x64 // d
	opAppends          = 0x65 // e
	opGet              = 0x67 // g
	opBinGet           = 0x68 // h
	opInst             = 0x69 // i
	opLongBinGet       = 0x6a // j
	opList             = 0x6c // l
	opObj              = 0x6f // o
	opPut              = 0x70 // p
	opBinPut           = 0x71 // q
	opLongBinPut       = 0x72 // r
	opSetItem          = 0x73 // s
	opTuple            = 0x74 // t
	opSetItems         = 0x75 // u
	opBinFloat         = 0x47 // G
	opEmptyTuple       = 0x29 // )
	opEmptyList        = 0x5d // ]
	opEmptyDict        = 0x7d // }
	opBinBytes         = 0x42 // B
	opShortBinBytes    = 0x43 // C

	opProto            = 0x80
	opNewObj           = 0x81
	opExt1             = 0x82
	opExt2             = 0x83
	opExt4             = 0x84
	opTuple1           = 0x85
	opTuple2           = 0x86
	opTuple3           = 0x87
	opNewTrue          = 0x88
	opNewFalse         = 0x89
	opLong1            = 0x8a
	opLong4            = 0x8b
	opShortBinUnicode  = 0x8c
	opBinUnicode8      = 0x8d
	opBinBytes8        = 0x8e
	opEmptySet         = 0x8f
	opAddItems         = 0x90
	opFrozenSet        = 0x91
	opNewObjEx         = 0x92
	opStackGlobal      = 0x93
	opMemoize          = 0x94
	opFrame            = 0x95
	opByteArray8       = 0x96
	opNextBuffer       = 0x97
	opReadonlyBuffer   = 0x98
)

// opcodeName is used only for error messages and Disassemble.
func opcodeName(op byte) string {
	switch op {
	case opMark:
		return "MARK"
	case opStop:
		return "STOP"
	case opPop:
		return "POP"
	case opPopMark:
		return "POP_MARK"
	case opDup:
		return "DUP"
	case opFloat:
		return "FLOAT"
	case opInt:
		return "INT"
	case opBinInt:
		return "BININT"
	case opBinInt1:
		return "BININT1"
	case opLong:
		return "LONG"
	case opBinInt2:
		return "BININT2"
	case opNone:
		return "NONE"
	case opPersid:
		return "PERSID"
	case opBinPersid:
		return "BINPERSID"
	case opReduce:
		return "REDUCE"
	case opString:
		return "STRING"
	case opBinString:
		return "BINSTRING"
	case opShortBinString:
		return "SHORT_BINSTRING"
	case opUnicode:
		return "UNICODE"
	case opBinUnicode:
		return "BINUNICODE"
	case opAppend:
		return "APPEND"
	case opBuild:
		return "BUILD"
	case opGlobal:
		return "GLOBAL"
	case opDict:
		return "DICT"
	case opAppends:
		return "APPENDS"
	case opGet:
		return "GET"
	case opBinGet:
		return "BINGET"
	case opInst:
		return "INST"
	case opLongBinGet:
		return "LONG_BINGET"
	case opList:
		return "LIST"
	case opObj:
		return "OBJ"
	case opPut:
		return "PUT"
	case opBinPut:
		return "BINPUT"
	case opLongBinPut:
		return "LONG_BINPUT"
	case opSetItem:
		return "SETITEM"
	case opTuple:
		return "TUPLE"
	case opSetItems:
		return "SETITEMS"
	case opBinFloat:
		return "BINFLOAT"
	case opEmptyTuple:
		return "EMPTY_TUPLE"
	case opEmptyList:
		return "EMPTY_LIST"
	case opEmptyDict:
		return "EMPTY_DICT"
	case opBinBytes:
		return "BINBYTES"
	case opShortBinBytes:
		return "SHORT_BINBYTES"
	case opProto:
		return "PROTO"
	case opNewObj:
		return "NEWOBJ"
	case opExt1:
		return "EXT1"
	case opExt2:
		return "EXT2"
	case opExt4:
		return "EXT4"
	case opTuple1:
		return "TUPLE1"
	case opTuple2:
		return "TUPLE2"
	case opTuple3:
		return "TUPLE3"
	case opNewTrue:
		return "NEWTRUE"
	case opNewFalse:
		return "NEWFALSE"
	case opLong1:
		return "LONG1"
	case opLong4:
		return "LONG4"
	case opShortBinUnicode:
		return "SHORT_BINUNICODE"
	case opBinUnicode8:
		return "BINUNICODE8"
	case opBinBytes8:
		return "BINBYTES8"
	case opEmptySet:
		return "EMPTY_SET"
	case opAddItems:
		return "ADDITEMS"
	case opFrozenSet:
		return "FROZENSET"
	case opNewObjEx:
		return "NEWOBJ_EX"
	case opStackGlobal:
		return "STACK_GLOBAL"
	case opMemoize:
		return "MEMOIZE"
	case opFrame:
		return "FRAME"
	case opByteArray8:
		return "BYTEARRAY8"
	case opNextBuffer:
		return "NEXT_BUFFER"
	case opReadonlyBuffer:
		return "READONLY_BUFFER"
	default:
		return "?"
	}
}
