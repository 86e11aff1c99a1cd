package main

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"golang.org/x/xerrors"
)

func nop() error { return nil }

// load returns the code at path, "-" meaning stdin. Regular files are
// mapped read only; release unmaps them.
func load(path string, stdin *os.File) ([]byte, func() error, error) {
	if path == "-" {
		if term.IsTerminal(int(stdin.Fd())) {
			return nil, nil, xerrors.New("refusing to read machine code from a terminal")
		}
		code, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, xerrors.Errorf("read stdin: %w", err)
		}
		return code, nop, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if !fi.Mode().IsRegular() {
		code, err := io.ReadAll(f)
		if err != nil {
			return nil, nil, xerrors.Errorf("read %s: %w", path, err)
		}
		return code, nop, nil
	}
	if fi.Size() == 0 {
		return nil, nop, nil
	}

	code, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, xerrors.Errorf("mmap %s: %w", path, err)
	}
	return code, func() error { return unix.Munmap(code) }, nil
}
