package internal

import (
	"io"
	"os"
)

// Options controls what the pipeline prints and whether the interpreter runs.
type Options struct {
	Debug      bool // dump tokens, the symbol table, opcode traces and registers
	NoWarnings bool // suppress implicit conversion warnings
	Code       bool // run the interpreter after the type check
	Out        io.Writer
	In         io.Reader
}

func (opts *Options) out() io.Writer {
	if opts.Out == nil {
		return os.Stdout
	}
	return opts.Out
}

func (opts *Options) in() io.Reader {
	if opts.In == nil {
		return os.Stdin
	}
	return opts.In
}
