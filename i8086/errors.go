package i8086

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrUnsupportedOpcode is returned when a lead byte matches none of
	// the MOV encodings.
	ErrUnsupportedOpcode = xerrors.New("unsupported opcode")

	// ErrTruncated is returned when an instruction needs more bytes than
	// remain in the stream.
	ErrTruncated = xerrors.New("truncated instruction")

	// ErrUnhandledVariant is returned for the segment register forms of
	// MOV. The bytes are valid; the decoder just does not go there.
	ErrUnhandledVariant = xerrors.New("unhandled variant")
)

// DecodeError is the error returned by the decoder. It records where the
// failed instruction started.
type DecodeError struct {
	Offset int
	Opcode byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %04x: opcode %02x: %v", e.Offset, e.Opcode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
