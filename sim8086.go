// sim8086 decodes 8086 MOV instructions.
package main

import (
	"bufio"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

func main() {
	var cli struct {
		LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level."`
		LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log format."`

		Decode decodeCmd `cmd:"" default:"withargs" help:"Decode an 8086 object file to NASM assembly."`
	}

	ctx := kong.Parse(&cli,
		kong.Name("sim8086"),
		kong.Description("Disassemble 8086 MOV instructions."),
	)
	log, err := newLogger(cli.LogLevel, cli.LogFormat)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(log)
	ctx.FatalIfErrorf(err)
}

func newLogger(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

type decodeCmd struct {
	Path        string `arg:"" optional:"" default:"-" help:"Object file assembled by nasm, - for stdin."`
	NoHeader    bool   `name:"no-header" help:"Omit the leading bits 16 line."`
	Listing     bool   `help:"Annotate each line with its offset and encoded bytes."`
	SkipUnknown bool   `name:"skip-unknown" help:"Emit db for unsupported opcodes and keep going."`
}

func (d *decodeCmd) Run(log *logrus.Logger) error {
	code, release, err := load(d.Path, os.Stdin)
	if err != nil {
		return err
	}
	defer release()

	log.WithFields(logrus.Fields{"path": d.Path, "size": len(code)}).Info("loaded")
	c := console{
		w:       bufio.NewWriter(os.Stdout),
		header:  !d.NoHeader,
		listing: d.Listing,
		skip:    d.SkipUnknown,
		log:     log,
	}
	return c.disassemble(code)
}
