package gopickle

import (
	"strings"
	"testing"
)

func TestErrorMessagesCarryOffsetAndOpcode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"UnsupportedProtocolError", &UnsupportedProtocolError{Version: 9, Offset: 3}, []string{"9", "3"}},
		{"UnsupportedFeatureError", &UnsupportedFeatureError{Feature: "out-of-band buffers", Opcode: 0x97, Offset: 10}, []string{"out-of-band buffers", "10"}},
		{"MissingResolverError", &MissingResolverError{Pid: "x", Offset: 4}, []string{"x", "4"}},
		{"ResolverContractError", &ResolverContractError{Detail: "bad shape", Offset: 7}, []string{"bad shape", "7"}},
		{"TruncatedError", &TruncatedError{Offset: 2, Needed: 5}, []string{"2", "5"}},
		{"MalformedOperandError", &MalformedOperandError{Opcode: 0x49, Detail: "not a decimal integer", Offset: 1}, []string{"not a decimal integer", "1"}},
		{"UnknownOpcodeError", &UnknownOpcodeError{Opcode: 0xFF, Offset: 6}, []string{"ff", "6"}},
		{"StackUnderflowError", &StackUnderflowError{Opcode: 0x30, Offset: 8, Detail: "pop on empty stack"}, []string{"pop on empty stack", "8"}},
		{"TypeMismatchError", &TypeMismatchError{Opcode: 0x61, Offset: 9, Detail: "wrong head"}, []string{"wrong head", "9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("%q does not contain %q", msg, want)
				}
			}
		})
	}
}
