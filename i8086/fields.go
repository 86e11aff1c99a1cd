package i8086

// Bit fields of the opcode and ModRM bytes.
//
//	opcode            ModRM
//	|x x x x x x|d|w| |mod|reg  |rm   |

func dbit(op byte) bool { return op&0x02 != 0 }

func wbit(op byte) bool { return op&0x01 != 0 }

// modrm splits a ModRM byte.
func modrm(b byte) (mod, reg, rm uint8) {
	return b >> 6, (b >> 3) & 7, b & 7
}

// immreg returns the w bit and register of the 1011wreg form.
func immreg(op byte) (w bool, reg uint8) {
	return op&0x08 != 0, op & 7
}
