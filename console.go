package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/davecheney/sim8086/i8086"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// console writes decoded instructions as assembly text.
type console struct {
	w       *bufio.Writer
	header  bool // write bits 16 first
	listing bool // append ; offset bytes
	skip    bool // db unsupported opcodes
	log     logrus.FieldLogger
}

func (c *console) disassemble(code []byte) error {
	if c.header {
		fmt.Fprintln(c.w, "bits 16")
	}

	d := i8086.NewDecoder(code)
	d.Log = c.log
	for {
		inst, err := d.Next()
		switch {
		case err == io.EOF:
			return c.w.Flush()
		case xerrors.Is(err, i8086.ErrUnhandledVariant):
			off := d.Offset()
			v, _ := i8086.Classify(code[off])
			fmt.Fprintf(c.w, "; %v not decoded\n", v)
			c.log.WithFields(logrus.Fields{
				"offset":  fmt.Sprintf("%04x", off),
				"variant": v,
			}).Warn("segment register move, stopping")
			return c.w.Flush()
		case c.skip && xerrors.Is(err, i8086.ErrUnsupportedOpcode):
			off := d.Offset()
			c.log.WithError(err).Info("skipping byte")
			c.writeline(fmt.Sprintf("db 0x%02x", code[off]), off, code[off:off+1])
			d.Skip()
			continue
		case err != nil:
			if ferr := c.w.Flush(); ferr != nil {
				return ferr
			}
			return err
		}
		c.writeline(inst.String(), inst.Offset, inst.Bytes)
	}
}

func (c *console) writeline(asm string, off int, b []byte) {
	if !c.listing {
		fmt.Fprintln(c.w, asm)
		return
	}
	fmt.Fprintf(c.w, "%-28s; %04x % x\n", asm, off, b)
}
