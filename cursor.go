package gopickle

import (
	"encoding/binary"
	"math"
	"math/big"
)

// cursor is a sliced, non-copying view over the pickle input.
//
// All read* methods advance pos past what they consumed. readBytes and
// remaining return slices into buf, not copies — callers must not retain
// them past the lifetime of the input byte slice if the caller plans to
// mutate it.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) offset() int {
	return c.pos
}

func (c *cursor) remaining() []byte {
	return c.buf[c.pos:]
}

func (c *cursor) atEnd() bool {
	return c.pos >= len(c.buf)
}

// readBytes returns the next n bytes as a view into buf.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, errTruncated
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readU8() (byte, error) {
	b, err := c.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU16LE() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) readU32LEUnsigned() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readU32LESigned() (int32, error) {
	v, err := c.readU32LEUnsigned()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func (c *cursor) readU64LE() (uint64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) readF64BE() (float64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// readLine returns bytes up to and excluding the next '\n'; it advances past
// the '\n'. The terminator is mandatory: if the input runs out first, the
// read fails with errTruncated.
func (c *cursor) readLine() ([]byte, error) {
	rest := c.buf[c.pos:]
	i := indexByte(rest, '\n')
	if i < 0 {
		return nil, errTruncated
	}
	line := rest[:i]
	c.pos += i + 1
	return line, nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// readSignedLittle decodes n bytes of two's-complement little-endian data as
// an arbitrary-precision signed integer. It is used by LONG1/LONG4, whose
// byte count is not bounded by any host machine word size.
func (c *cursor) readSignedLittle(n int) (*big.Int, error) {
	data, err := c.readBytes(n)
	if err != nil {
		return nil, err
	}
	return decodeTwosComplementLE(data), nil
}

// decodeTwosComplementLE interprets data as a two's-complement little-endian
// signed integer of len(data) bytes.
func decodeTwosComplementLE(data []byte) *big.Int {
	if len(data) == 0 {
		return big.NewInt(0)
	}

	negative := data[len(data)-1]&0x80 != 0

	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}

	v := new(big.Int).SetBytes(be)
	if negative {
		// v currently holds the unsigned bit pattern; subtract 2^(8*n).
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(data)))
		v.Sub(v, mod)
	}
	return v
}
