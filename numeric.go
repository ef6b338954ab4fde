package gopickle

import (
	"math/big"
	"strconv"
	"strings"
)

// parseAsciiInt parses the ASCII decimal line of an INT opcode. "00" and
// "01" are pickle's boolean aliases from protocols that predate NEWTRUE/
// NEWFALSE and decode to bool, not int.
func parseAsciiInt(line []byte, op byte, offset int) (Value, error) {
	s := string(line)
	switch s {
	case "00":
		return false, nil
	case "01":
		return true, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "INT: not a decimal integer: " + strconv.Quote(s)}
	}
	return bigIntOrSmall(v), nil
}

// parseAsciiLong parses the ASCII decimal line of a LONG opcode, which
// carries an optional trailing "L" (CPython always writes one).
func parseAsciiLong(line []byte, op byte, offset int) (Value, error) {
	s := strings.TrimSuffix(string(line), "L")
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "LONG: not a decimal integer: " + strconv.Quote(s)}
	}
	return bigIntOrSmall(v), nil
}

// parseAsciiFloat parses the decimal-text line of a FLOAT opcode.
func parseAsciiFloat(line []byte, op byte, offset int) (float64, error) {
	f, err := strconv.ParseFloat(string(line), 64)
	if err != nil {
		return 0, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "FLOAT: not a decimal float: " + strconv.Quote(string(line))}
	}
	return f, nil
}
