package i8086

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/matryer/is"
	"golang.org/x/xerrors"
)

type listing struct {
	code []byte
	asm  string
}

// more register and memory movs
var listing39 = []listing{
	{[]byte{0x89, 0xde}, "mov si, bx"},
	{[]byte{0x88, 0xc6}, "mov dh, al"},
	{[]byte{0xb1, 0x0c}, "mov cl, 12"},
	{[]byte{0xb5, 0xf4}, "mov ch, -12"},
	{[]byte{0xb9, 0x0c, 0x00}, "mov cx, 12"},
	{[]byte{0xb9, 0xf4, 0xff}, "mov cx, -12"},
	{[]byte{0xba, 0x6c, 0x0f}, "mov dx, 3948"},
	{[]byte{0xba, 0x94, 0xf0}, "mov dx, -3948"},
	{[]byte{0x8a, 0x00}, "mov al, [bx + si]"},
	{[]byte{0x8b, 0x1b}, "mov bx, [bp + di]"},
	{[]byte{0x8b, 0x56, 0x00}, "mov dx, [bp]"},
	{[]byte{0x8a, 0x60, 0x04}, "mov ah, [bx + si + 4]"},
	{[]byte{0x8a, 0x80, 0x87, 0x13}, "mov al, [bx + si + 4999]"},
	{[]byte{0x89, 0x09}, "mov [bx + di], cx"},
	{[]byte{0x88, 0x0a}, "mov [bp + si], cl"},
	{[]byte{0x88, 0x6e, 0x00}, "mov [bp], ch"},
}

// signed displacements, explicit sizes, direct addresses and the
// accumulator forms
var listing40 = []listing{
	{[]byte{0x8b, 0x41, 0xdb}, "mov ax, [bx + di - 37]"},
	{[]byte{0x89, 0x8c, 0xd4, 0xfe}, "mov [si - 300], cx"},
	{[]byte{0x8b, 0x57, 0xe0}, "mov dx, [bx - 32]"},
	{[]byte{0xc6, 0x03, 0x07}, "mov [bp + di], byte 7"},
	{[]byte{0xc7, 0x85, 0x85, 0x03, 0x5b, 0x01}, "mov [di + 901], word 347"},
	{[]byte{0x8b, 0x2e, 0x05, 0x00}, "mov bp, [5]"},
	{[]byte{0x8b, 0x1e, 0x82, 0x0d}, "mov bx, [3458]"},
	{[]byte{0xa1, 0xfb, 0x09}, "mov ax, [2555]"},
	{[]byte{0xa1, 0x10, 0x00}, "mov ax, [16]"},
	{[]byte{0xa3, 0xfa, 0x09}, "mov [2554], ax"},
	{[]byte{0xa3, 0x0f, 0x00}, "mov [15], ax"},
}

func join(l []listing) ([]byte, string) {
	var code []byte
	var lines []string
	for _, i := range l {
		code = append(code, i.code...)
		lines = append(lines, i.asm)
	}
	return code, strings.Join(lines, "\n") + "\n"
}

func TestDecodeInstruction(t *testing.T) {
	tests := append([]listing{
		{[]byte{0x89, 0xd9}, "mov cx, bx"},
		{[]byte{0xb8, 0x09, 0x00}, "mov ax, 9"},
		{[]byte{0xc6, 0x40, 0x04, 0x1d}, "mov [bx + si + 4], byte 29"},
		{[]byte{0x8a, 0x00}, "mov al, [bx + si]"},
		{[]byte{0x88, 0xe5}, "mov ch, ah"},
		{[]byte{0x89, 0xfc}, "mov sp, di"},
		{[]byte{0xc7, 0xc1, 0x0c, 0x00}, "mov cx, word 12"},
		{[]byte{0xa0, 0x10, 0x00}, "mov al, [16]"},
		{[]byte{0xa2, 0x10, 0x00}, "mov [16], al"},
		{[]byte{0xc6, 0x06, 0x34, 0x12, 0xff}, "mov [4660], byte -1"},
	}, append(listing39, listing40...)...)

	for _, tt := range tests {
		t.Run(tt.asm, func(t *testing.T) {
			is := is.New(t)
			d := NewDecoder(tt.code)
			inst, err := d.Next()
			is.NoErr(err)
			is.Equal(inst.String(), tt.asm)
			is.Equal(inst.Len(), len(tt.code))
			is.Equal(inst.Offset, 0)

			_, err = d.Next()
			is.Equal(err, io.EOF)
			s, r := d.State()
			is.Equal(s, Terminated)
			is.Equal(r, Exhausted)
		})
	}
}

func TestDecodeScenarioFields(t *testing.T) {
	is := is.New(t)
	insts, err := Decode([]byte{0xc6, 0x40, 0x04, 0x1d})
	is.NoErr(err)
	is.Equal(len(insts), 1)
	inst := insts[0]
	is.Equal(inst.Variant, ImmToRegMem)
	is.Equal(inst.Dst, Memory{RM: 0, Disp: 4})
	is.Equal(inst.Src, Immediate{Value: 29, Width: Byte, Tagged: true})
}

func TestDisassembleListings(t *testing.T) {
	for name, l := range map[string][]listing{"listing39": listing39, "listing40": listing40} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			code, want := join(l)
			var buf bytes.Buffer
			is.NoErr(Disassemble(&buf, code))
			is.Equal(buf.String(), want)
		})
	}
}

func TestDecodeOffsets(t *testing.T) {
	is := is.New(t)
	code, _ := join(listing40)
	insts, err := Decode(code)
	is.NoErr(err)
	is.Equal(len(insts), len(listing40))
	off := 0
	for i, inst := range insts {
		is.Equal(inst.Offset, off)
		is.True(bytes.Equal(inst.Bytes, listing40[i].code))
		off += inst.Len()
	}
}

func TestDecodeIdempotent(t *testing.T) {
	is := is.New(t)
	code, _ := join(append(listing39, listing40...))
	var a, b bytes.Buffer
	is.NoErr(Disassemble(&a, code))
	is.NoErr(Disassemble(&b, code))
	is.Equal(a.String(), b.String())
}

func TestDecodeEmpty(t *testing.T) {
	is := is.New(t)
	insts, err := Decode(nil)
	is.NoErr(err)
	is.Equal(len(insts), 0)
}

// Every proper prefix of an instruction is truncated.
func TestDecodeTruncated(t *testing.T) {
	for _, l := range append(listing39, listing40...) {
		for n := 1; n < len(l.code); n++ {
			d := NewDecoder(l.code[:n])
			_, err := d.Next()
			if !xerrors.Is(err, ErrTruncated) {
				t.Errorf("%q cut to %d bytes: got %v, want %v", l.asm, n, err, ErrTruncated)
				continue
			}
			var de *DecodeError
			if !xerrors.As(err, &de) || de.Offset != 0 || de.Opcode != l.code[0] {
				t.Errorf("%q cut to %d bytes: got %#v", l.asm, n, err)
			}
			if d.Offset() != 0 {
				t.Errorf("%q cut to %d bytes: cursor at %d", l.asm, n, d.Offset())
			}
		}
	}
}

func TestDecodeTruncatedKeepsEarlier(t *testing.T) {
	is := is.New(t)
	insts, err := Decode([]byte{0x89, 0xd9, 0x8b, 0x41})
	is.True(xerrors.Is(err, ErrTruncated))
	is.Equal(len(insts), 1)
	is.Equal(insts[0].String(), "mov cx, bx")
}

func TestDecodeUnsupported(t *testing.T) {
	is := is.New(t)
	d := NewDecoder([]byte{0x89, 0xd9, 0x90, 0x89, 0xde})
	_, err := d.Next()
	is.NoErr(err)

	_, err = d.Next()
	is.True(xerrors.Is(err, ErrUnsupportedOpcode))
	var de *DecodeError
	is.True(xerrors.As(err, &de))
	is.Equal(de.Offset, 2)
	is.Equal(de.Opcode, byte(0x90))
	_, r := d.State()
	is.Equal(r, Failed)

	// terminated decoders keep failing
	_, err2 := d.Next()
	is.Equal(err2, err)

	is.True(d.Skip())
	inst, err := d.Next()
	is.NoErr(err)
	is.Equal(inst.String(), "mov si, bx")
	is.Equal(inst.Offset, 3)
}

func TestDecodeUnhandledVariant(t *testing.T) {
	for _, tt := range []struct {
		code []byte
		v    Variant
	}{
		{[]byte{0x89, 0xd9, 0x8e, 0xd8, 0x89, 0xde}, RegMemToSeg},
		{[]byte{0x89, 0xd9, 0x8c, 0xd8, 0x89, 0xde}, SegToRegMem},
	} {
		t.Run(tt.v.String(), func(t *testing.T) {
			is := is.New(t)
			var buf bytes.Buffer
			err := Disassemble(&buf, tt.code)
			is.True(xerrors.Is(err, ErrUnhandledVariant))
			is.True(!xerrors.Is(err, ErrUnsupportedOpcode))
			is.Equal(buf.String(), "mov cx, bx\n; "+tt.v.String()+" not decoded\n")

			d := NewDecoder(tt.code)
			_, err = d.Next()
			is.NoErr(err)
			_, err = d.Next()
			is.True(xerrors.Is(err, ErrUnhandledVariant))
			s, r := d.State()
			is.Equal(s, Terminated)
			is.Equal(r, Unhandled)
			is.True(!d.Skip()) // the decode loop is over
		})
	}
}

func TestDecoderState(t *testing.T) {
	is := is.New(t)
	d := NewDecoder([]byte{0x89, 0xd9})
	s, r := d.State()
	is.Equal(s, Scanning)
	is.Equal(r, Running)
	is.True(!d.Skip())

	_, err := d.Next()
	is.NoErr(err)
	s, _ = d.State()
	is.Equal(s, Scanning)
	is.Equal(d.Offset(), 2)
}

func FuzzDecode(f *testing.F) {
	code, _ := join(append(listing39, listing40...))
	f.Add(code)
	f.Add([]byte{0xc6})
	f.Add([]byte{0x8e, 0xd8})
	f.Fuzz(func(t *testing.T, code []byte) {
		d := NewDecoder(code)
		for {
			off := d.Offset()
			inst, err := d.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				if d.Offset() != off {
					t.Fatalf("cursor moved from %d to %d on %v", off, d.Offset(), err)
				}
				if !d.Skip() {
					return
				}
				continue
			}
			if inst.Len() == 0 || d.Offset() != off+inst.Len() {
				t.Fatalf("%v at %d: length %d, cursor %d", inst, off, inst.Len(), d.Offset())
			}
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	code, _ := join(append(listing39, listing40...))
	b.SetBytes(int64(len(code)))
	for i := 0; i < b.N; i++ {
		if _, err := Decode(code); err != nil {
			b.Fatal(err)
		}
	}
}
