package i8086

import "fmt"

// Instruction is one decoded MOV.
type Instruction struct {
	Offset  int    // offset of the opcode byte in the stream
	Bytes   []byte // encoded bytes, aliasing the stream
	Variant Variant
	Dst     Operand
	Src     Operand
}

// Len returns the encoded length of the instruction.
func (i Instruction) Len() int { return len(i.Bytes) }

func (i Instruction) String() string {
	return fmt.Sprintf("mov %s, %s", i.Dst, i.Src)
}
