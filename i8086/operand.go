package i8086

import "fmt"

// Operand is a decoded instruction operand: a Register, a Memory
// reference or an Immediate.
type Operand interface {
	fmt.Stringer
	operand()
}

var rs = [2][8]string{
	{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"},
	{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"},
}

// Register is a general register selected by a reg or rm field and the
// w bit.
type Register struct {
	Index uint8
	Wide  bool
}

func (Register) operand() {}

func (r Register) String() string {
	if r.Wide {
		return rs[1][r.Index&7]
	}
	return rs[0][r.Index&7]
}

// bases are the effective address terms indexed by rm. bp alone is only
// reachable with a displacement; mod=0 rm=6 is a direct address.
var bases = [8]string{
	"bx + si",
	"bx + di",
	"bp + si",
	"bp + di",
	"si",
	"di",
	"bp",
	"bx",
}

// Memory is a memory operand. Direct references carry an absolute Addr,
// the others a base term selected by RM and a signed displacement.
type Memory struct {
	RM     uint8
	Disp   int16
	Direct bool
	Addr   uint16
}

func (Memory) operand() {}

// Base returns the base register term, or "" for a direct address.
func (m Memory) Base() string {
	if m.Direct {
		return ""
	}
	return bases[m.RM&7]
}

func (m Memory) String() string {
	switch {
	case m.Direct:
		return fmt.Sprintf("[%d]", m.Addr)
	case m.Disp > 0:
		return fmt.Sprintf("[%s + %d]", m.Base(), m.Disp)
	case m.Disp < 0:
		return fmt.Sprintf("[%s - %d]", m.Base(), -int(m.Disp))
	default:
		return fmt.Sprintf("[%s]", m.Base())
	}
}

// resolve returns the operand selected by mod and rm, reading any
// displacement or direct address from c.
func resolve(c *Cursor, mod, rm uint8, w bool) (Operand, error) {
	switch mod {
	case 3:
		return Register{Index: rm, Wide: w}, nil
	case 0:
		if rm == 6 {
			addr, err := c.read16()
			if err != nil {
				return nil, err
			}
			return Memory{Direct: true, Addr: addr}, nil
		}
		return Memory{RM: rm}, nil
	case 1:
		b, err := c.read8()
		if err != nil {
			return nil, err
		}
		return Memory{RM: rm, Disp: int16(int8(b))}, nil
	default:
		v, err := c.read16()
		if err != nil {
			return nil, err
		}
		return Memory{RM: rm, Disp: int16(v)}, nil
	}
}
