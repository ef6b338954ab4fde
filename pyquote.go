package gopickle

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// pydecodeStringEscape decodes input according to "string-escape" Python codec.
//
// The codec is essentially defined here:
// https://github.com/python/cpython/blob/v2.7.15-198-g69d0bc1430d/Objects/stringobject.c#L600
func pydecodeStringEscape(s string) (string, error) {
	out := make([]byte, 0, len(s))

loop:
	for {
		r, width := utf8.DecodeRuneInString(s)
		if width == 0 {
			break
		}

		// regular UTF-8 character
		if r != '\\' {
			out = append(out, s[:width]...)
			s = s[width:]
			continue
		}

		if len(s) < 2 {
			return "", strconv.ErrSyntax
		}

		switch c := s[1]; c {
		// \ LF -> just skip
		case '\n':
			s = s[2:]
			continue loop

		// \\ -> \
		case '\\':
			out = append(out, '\\')
			s = s[2:]
			continue loop

		// \' \"  (yes, both quotes are allowed to be escaped).
		//
		// also: both quotes are allowed to be _unescaped_ - e.g. Python
		// unpickles "S'hel'lo'\n." as "hel'lo".
		case '\'', '"':
			out = append(out, c)
			s = s[2:]
			continue loop

		// \c (any character without special meaning) -> \ and proceed with C
		default:
			out = append(out, '\\')
			s = s[1:] // not skipping c
			continue loop

		// escapes we handle (NOTE no \u \U for strings)
		case 'b','f','t','n','r','v','a':     // control characters
		case '0','1','2','3','4','5','6','7': // octals
	        case 'x':                             // hex
		}

		// s starts with a good/known string escape prefix -> reuse unquoteChar.
		r, _, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			return "", err
		}

		// all above escapes must produce single byte. This way we can
		// append it directly, not play rune -> string UTF-8 encoding
		// games (which break on e.g. "\x80" -> "\u0080" (= "\xc2x80").
		c := byte(r)
		if r != rune(c) {
			panic(fmt.Sprintf("pydecode: string-escape: non-byte escaped rune %q (% x  ; from %q)",
				r, r, s))
		}

		out = append(out, c)
		s = tail
	}

	return string(out), nil
}

// unquotePickleString strips the surrounding quotes from a STRING
// opcode's line (single or double, matching) and decodes the Python
// string-escape payload inside.
func unquotePickleString(line []byte, op byte, offset int) ([]byte, error) {
	if len(line) < 2 {
		return nil, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "STRING: missing quotes"}
	}
	q := line[0]
	if (q != '\'' && q != '"') || line[len(line)-1] != q {
		return nil, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "STRING: quote mismatch"}
	}
	decoded, err := pydecodeStringEscape(string(line[1 : len(line)-1]))
	if err != nil {
		return nil, &MalformedOperandError{Opcode: op, Offset: offset, Detail: "STRING: " + err.Error()}
	}
	return []byte(decoded), nil
}
