// Package i8086 decodes 8086 MOV instructions into NASM syntax.
//
// Seven MOV encodings are recognised. The register/memory, immediate and
// accumulator forms are decoded; the two segment register forms stop the
// decoder with ErrUnhandledVariant.
package i8086

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// State is the state of a Decoder.
type State uint8

const (
	Scanning State = iota
	Decoding
	Terminated
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Decoding:
		return "decoding"
	default:
		return "terminated"
	}
}

// Reason records why a Decoder terminated.
type Reason uint8

const (
	Running   Reason = iota
	Exhausted        // every byte decoded
	Unhandled        // segment register form reached
	Failed           // unsupported opcode or truncated instruction
)

func (r Reason) String() string {
	switch r {
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Unhandled:
		return "unhandled"
	default:
		return "failed"
	}
}

// Decoder decodes instructions one at a time from a byte stream.
type Decoder struct {
	// Log, if set, receives a debug entry for every decoded instruction.
	Log logrus.FieldLogger

	c      *Cursor
	state  State
	reason Reason
	err    error
}

// NewDecoder returns a Decoder reading code from offset 0.
func NewDecoder(code []byte) *Decoder {
	return &Decoder{c: NewCursor(code)}
}

// State returns the decoder state and, once terminated, the reason.
func (d *Decoder) State() (State, Reason) { return d.state, d.reason }

// Offset returns the offset of the next instruction.
func (d *Decoder) Offset() int { return d.c.Offset() }

// Next decodes the instruction at the current offset. It returns io.EOF
// once the stream is exhausted. Any other error is a *DecodeError; the
// cursor is left at the start of the failed instruction and every later
// call returns the same error until Skip is called.
func (d *Decoder) Next() (Instruction, error) {
	if d.state == Terminated {
		return Instruction{}, d.err
	}
	if d.c.Done() {
		d.terminate(Exhausted, io.EOF)
		return Instruction{}, io.EOF
	}

	d.state = Decoding
	start := d.c.Offset()
	op, _ := d.c.read8()
	v, inst, err := d.step(op)
	if err != nil {
		d.c.seek(start)
		err = &DecodeError{Offset: start, Opcode: op, Err: err}
		if xerrors.Is(err, ErrUnhandledVariant) {
			d.terminate(Unhandled, err)
		} else {
			d.terminate(Failed, err)
		}
		return Instruction{}, err
	}

	inst.Offset = start
	inst.Bytes = d.c.slice(start)
	inst.Variant = v
	d.state = Scanning
	if d.Log != nil {
		d.Log.WithFields(logrus.Fields{
			"offset":  fmt.Sprintf("%04x", start),
			"opcode":  fmt.Sprintf("%02x", op),
			"variant": v,
			"len":     inst.Len(),
		}).Debug("decode step")
	}
	return inst, nil
}

// Skip steps over the lead byte of an instruction that failed to decode
// and resumes scanning. It reports false, doing nothing, unless the
// decoder terminated with Failed.
func (d *Decoder) Skip() bool {
	if d.state != Terminated || d.reason != Failed {
		return false
	}
	d.c.seek(d.c.Offset() + 1)
	d.state, d.reason, d.err = Scanning, Running, nil
	return true
}

func (d *Decoder) terminate(r Reason, err error) {
	d.state, d.reason, d.err = Terminated, r, err
}

// step decodes the rest of the instruction whose lead byte is op.
func (d *Decoder) step(op byte) (Variant, Instruction, error) {
	v, err := Classify(op)
	if err != nil {
		return v, Instruction{}, ErrUnsupportedOpcode
	}

	var inst Instruction
	switch v {
	case RegMemToFromReg:
		inst, err = d.regmem(op)
	case ImmToRegMem:
		inst, err = d.immregmem(op)
	case ImmToReg:
		inst, err = d.immreg(op)
	case MemToAcc, AccToMem:
		inst, err = d.acc(op, v)
	default:
		err = xerrors.Errorf("%v: %w", v, ErrUnhandledVariant)
	}
	return v, inst, err
}

// regmem decodes 100010dw mod reg rm [disp].
func (d *Decoder) regmem(op byte) (Instruction, error) {
	b, err := d.c.read8()
	if err != nil {
		return Instruction{}, err
	}
	mod, reg, rm := modrm(b)
	w := wbit(op)
	m, err := resolve(d.c, mod, rm, w)
	if err != nil {
		return Instruction{}, err
	}
	r := Register{Index: reg, Wide: w}
	if dbit(op) {
		return Instruction{Dst: r, Src: m}, nil
	}
	return Instruction{Dst: m, Src: r}, nil
}

// immregmem decodes 1100011w mod 000 rm [disp] data [data].
func (d *Decoder) immregmem(op byte) (Instruction, error) {
	b, err := d.c.read8()
	if err != nil {
		return Instruction{}, err
	}
	mod, _, rm := modrm(b)
	w := wbit(op)
	dst, err := resolve(d.c, mod, rm, w)
	if err != nil {
		return Instruction{}, err
	}
	imm, err := readImmediate(d.c, w)
	if err != nil {
		return Instruction{}, err
	}
	imm.Tagged = true
	return Instruction{Dst: dst, Src: imm}, nil
}

// immreg decodes 1011wreg data [data].
func (d *Decoder) immreg(op byte) (Instruction, error) {
	w, reg := immreg(op)
	imm, err := readImmediate(d.c, w)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Dst: Register{Index: reg, Wide: w}, Src: imm}, nil
}

// acc decodes 101000dw addr-lo addr-hi.
func (d *Decoder) acc(op byte, v Variant) (Instruction, error) {
	m, err := readAddress(d.c)
	if err != nil {
		return Instruction{}, err
	}
	a := Register{Index: 0, Wide: wbit(op)}
	if v == MemToAcc {
		return Instruction{Dst: a, Src: m}, nil
	}
	return Instruction{Dst: m, Src: a}, nil
}

// Decode decodes every instruction in code. On error it returns the
// instructions decoded before the failing one.
func Decode(code []byte) ([]Instruction, error) {
	d := NewDecoder(code)
	var insts []Instruction
	for {
		inst, err := d.Next()
		if err == io.EOF {
			return insts, nil
		}
		if err != nil {
			return insts, err
		}
		insts = append(insts, inst)
	}
}

// Disassemble writes one line per instruction in code to w. When a segment
// register form is reached it writes a comment naming the variant and
// returns an error wrapping ErrUnhandledVariant.
func Disassemble(w io.Writer, code []byte) error {
	d := NewDecoder(code)
	for {
		inst, err := d.Next()
		switch {
		case err == io.EOF:
			return nil
		case xerrors.Is(err, ErrUnhandledVariant):
			v, _ := Classify(code[d.Offset()])
			if _, werr := fmt.Fprintf(w, "; %v not decoded\n", v); werr != nil {
				return werr
			}
			return err
		case err != nil:
			return err
		}
		if _, err := fmt.Fprintln(w, inst); err != nil {
			return err
		}
	}
}
