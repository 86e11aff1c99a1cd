package i8086

import "fmt"

// Width is the size of an immediate value.
type Width uint8

const (
	Byte Width = iota
	Word
)

func (w Width) String() string {
	if w == Word {
		return "word"
	}
	return "byte"
}

// Immediate is a data operand. Byte values are sign extended to 16 bits.
// Tagged immediates render with their width, as in "byte 7".
type Immediate struct {
	Value  int16
	Width  Width
	Tagged bool
}

func (Immediate) operand() {}

func (i Immediate) String() string {
	if i.Tagged {
		return fmt.Sprintf("%s %d", i.Width, i.Value)
	}
	return fmt.Sprintf("%d", i.Value)
}

// readImmediate reads one data byte when w is false, a little endian word
// otherwise.
func readImmediate(c *Cursor, w bool) (Immediate, error) {
	if !w {
		b, err := c.read8()
		if err != nil {
			return Immediate{}, err
		}
		return Immediate{Value: int16(int8(b)), Width: Byte}, nil
	}
	v, err := c.read16()
	if err != nil {
		return Immediate{}, err
	}
	return Immediate{Value: int16(v), Width: Word}, nil
}

// readAddress reads the 16 bit direct address of the accumulator forms.
// It is a full word whatever the opcode's w bit says.
func readAddress(c *Cursor) (Memory, error) {
	addr, err := c.read16()
	if err != nil {
		return Memory{}, err
	}
	return Memory{Direct: true, Addr: addr}, nil
}
