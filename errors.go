package gopickle

import (
	"errors"
	"fmt"
)

// Internal sentinels used between helper methods before the dispatch loop
// attaches opcode/offset context and promotes them to one of the exported
// error types below.
var (
	errStackUnderflow = errors.New("gopickle: stack underflow")
	errNoMarker       = errors.New("gopickle: pop to mark with no mark set")
	errTruncated      = errors.New("gopickle: truncated input")
)

// UnsupportedProtocolError is returned when a PROTO opcode declares a
// version newer than this decoder understands.
type UnsupportedProtocolError struct {
	Version int
	Offset  int
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("gopickle: unsupported pickle protocol: %d (at offset %d)", e.Version, e.Offset)
}

// UnsupportedFeatureError is returned for opcodes this decoder recognizes
// but deliberately does not implement (the extension registry, PEP 574
// out-of-band buffers).
type UnsupportedFeatureError struct {
	Feature string
	Opcode  byte
	Offset  int
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("gopickle: %s not supported (opcode 0x%02x at offset %d)", e.Feature, e.Opcode, e.Offset)
}

// MissingResolverError is returned when a PERSID/BINPERSID opcode appears
// but no persistent-id resolver was configured.
type MissingResolverError struct {
	Pid    Value
	Offset int
}

func (e *MissingResolverError) Error() string {
	return fmt.Sprintf("gopickle: encountered persistent id: %v, but no resolver was specified (at offset %d)", e.Pid, e.Offset)
}

// ResolverContractError is returned when the caller-supplied
// PersistentIDResolver returns an error; Detail carries that error's
// message.
type ResolverContractError struct {
	Detail string
	Offset int
}

func (e *ResolverContractError) Error() string {
	return fmt.Sprintf("gopickle: resolver contract violated: %s (at offset %d)", e.Detail, e.Offset)
}

// TruncatedError is returned when a cursor read would run past the end of
// the input.
type TruncatedError struct {
	Offset int
	Needed int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("gopickle: truncated input at offset %d, needed %d more byte(s)", e.Offset, e.Needed)
}

// MalformedOperandError is returned when an opcode's operand cannot be
// parsed as its declared type: an unparsable numeric literal, a missing
// string terminator, a quote mismatch, a length/content mismatch.
type MalformedOperandError struct {
	Opcode byte
	Detail string
	Offset int
}

func (e *MalformedOperandError) Error() string {
	return fmt.Sprintf("gopickle: malformed operand for opcode 0x%02x: %s (at offset %d)", e.Opcode, e.Detail, e.Offset)
}

// UnknownOpcodeError is returned for a byte outside the defined opcode
// set.
type UnknownOpcodeError struct {
	Opcode byte
	Offset int
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("gopickle: unknown opcode 0x%02x at offset %d", e.Opcode, e.Offset)
}

// StackUnderflowError is returned for a pop on an empty stack, a pop-to-mark
// with no mark set, or a STOP that leaves more than one value behind.
type StackUnderflowError struct {
	Opcode byte
	Offset int
	Detail string
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("gopickle: stack underflow at opcode 0x%02x, offset %d: %s", e.Opcode, e.Offset, e.Detail)
}

// TypeMismatchError is returned when a mutator opcode's head is of an
// incompatible kind, e.g. BUILD applied to something other than an
// ObjectDescriptor.
type TypeMismatchError struct {
	Opcode byte
	Offset int
	Detail string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("gopickle: type mismatch at opcode 0x%02x, offset %d: %s", e.Opcode, e.Offset, e.Detail)
}
