package dictionary

import (
	"encoding/binary"
	"unicode/utf8"
)

// Cursor reads the dictionary buffer sequentially. It is a small value type
// so descending the trie costs no allocation. Reads past the end of the
// buffer panic: a truncated dictionary is a precondition violation.
type Cursor struct {
	buf []byte
	pos int
}

// ReadU8 returns the byte at the cursor and advances.
func (c *Cursor) ReadU8() byte {
	b := c.buf[c.pos]
	c.pos++
	return b
}

// PeekU8 returns the byte at the cursor without advancing.
func (c *Cursor) PeekU8() byte {
	return c.buf[c.pos]
}

// ReadVarUint decodes a little-endian base-128 integer.
func (c *Cursor) ReadVarUint() uint64 {
	v, n := binary.Uvarint(c.buf[c.pos:])
	if n <= 0 {
		panic("truncated varint")
	}
	c.pos += n
	return v
}

// ReadString decodes a 0-terminated sequence of varint codepoints.
func (c *Cursor) ReadString() string {
	return string(c.AppendString(nil))
}

// AppendString decodes a 0-terminated codepoint sequence, appending its
// UTF-8 encoding to dst.
func (c *Cursor) AppendString(dst []byte) []byte {
	for {
		cp := c.ReadVarUint()
		if cp == 0 {
			return dst
		}
		if cp > utf8.MaxRune {
			cp = utf8.RuneError
		}
		dst = utf8.AppendRune(dst, rune(cp))
	}
}

// SkipString advances past a 0-terminated codepoint sequence.
func (c *Cursor) SkipString() {
	for c.ReadVarUint() != 0 {
	}
}

// Goto moves the cursor to an absolute buffer offset.
func (c *Cursor) Goto(pos int) { c.pos = pos }

// Tell returns the absolute buffer offset of the cursor.
func (c *Cursor) Tell() int { return c.pos }
