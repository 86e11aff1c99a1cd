package i8086

import "golang.org/x/xerrors"

// Variant is one of the MOV encodings.
type Variant uint8

const (
	RegMemToFromReg Variant = iota // 100010dw
	ImmToRegMem                    // 1100011w
	ImmToReg                       // 1011wreg
	MemToAcc                       // 1010000w
	AccToMem                       // 1010001w
	RegMemToSeg                    // 10001110
	SegToRegMem                    // 10001100
)

var variants = [...]string{
	RegMemToFromReg: "RegMemToFromReg",
	ImmToRegMem:     "ImmToRegMem",
	ImmToReg:        "ImmToReg",
	MemToAcc:        "MemToAcc",
	AccToMem:        "AccToMem",
	RegMemToSeg:     "RegMemToSeg",
	SegToRegMem:     "SegToRegMem",
}

func (v Variant) String() string {
	if int(v) < len(variants) {
		return variants[v]
	}
	return "Variant(?)"
}

type op struct {
	mask uint8
	ins  uint8
	v    Variant
}

// movtable is searched in order and the first match wins. The segment forms
// match the full byte and come last.
var movtable = [...]op{
	{0xfc, 0x88, RegMemToFromReg},
	{0xfe, 0xc6, ImmToRegMem},
	{0xf0, 0xb0, ImmToReg},
	{0xfe, 0xa0, MemToAcc},
	{0xfe, 0xa2, AccToMem},
	{0xff, 0x8e, RegMemToSeg},
	{0xff, 0x8c, SegToRegMem},
}

// Classify returns the MOV variant encoded by the lead byte b.
func Classify(b byte) (Variant, error) {
	for _, o := range movtable {
		if b&o.mask == o.ins {
			return o.v, nil
		}
	}
	return 0, xerrors.Errorf("%02x: %w", b, ErrUnsupportedOpcode)
}
