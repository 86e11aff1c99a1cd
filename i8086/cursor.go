package i8086

import "golang.org/x/xerrors"

// Cursor is a read position in a byte stream. It only moves forward while
// an instruction is decoded.
type Cursor struct {
	code []byte
	off  int
}

// NewCursor returns a Cursor positioned at the start of code. The slice is
// never written to.
func NewCursor(code []byte) *Cursor {
	return &Cursor{code: code}
}

// Offset returns the offset of the next unread byte.
func (c *Cursor) Offset() int { return c.off }

// Len returns the number of bytes in the stream.
func (c *Cursor) Len() int { return len(c.code) }

// Done reports whether every byte has been consumed.
func (c *Cursor) Done() bool { return c.off >= len(c.code) }

// read8 reads the byte at the cursor.
func (c *Cursor) read8() (byte, error) {
	if c.off >= len(c.code) {
		return 0, xerrors.Errorf("read at %04x, stream is %d bytes: %w", c.off, len(c.code), ErrTruncated)
	}
	b := c.code[c.off]
	c.off++
	return b, nil
}

// read16 reads a little endian word at the cursor.
func (c *Cursor) read16() (uint16, error) {
	lo, err := c.read8()
	if err != nil {
		return 0, err
	}
	hi, err := c.read8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// seek moves the cursor to off, used to back out of a failed instruction.
func (c *Cursor) seek(off int) { c.off = off }

// slice returns the bytes in [from, cursor).
func (c *Cursor) slice(from int) []byte { return c.code[from:c.off] }
