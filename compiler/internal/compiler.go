package internal

import (
	"fmt"
	"io"
	"os"
)

// CompileFile runs the pipeline over the source file at path.
func CompileFile(path string, opts *Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Compile(f, opts)
}

// Compile tokenizes, parses and checks the program read from rd, then runs it when
// opts.Code is set. It stops at the first phase that fails.
func Compile(rd io.Reader, opts *Options) error {
	out := opts.out()
	commandT().Infof("compiler: start tokenizer")
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return err
	}
	if opts.Debug {
		syntaxT().Debugf("tokens:\n%s", DumpTokens(tokens))
	}
	commandT().Infof("compiler: start parser")
	parser := &Parser{}
	program, err := parser.Parse(tokens)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Syntax is correct")
	if opts.Debug {
		syntaxT().Debugf("program:\n%s", DumpProgram(program))
	}
	commandT().Infof("compiler: start building symbol table")
	table := NewSymbolTable()
	err = table.Build(program, tokens)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Domain Analysis & Table of Symbols is correct")
	if opts.Debug {
		coreT().Debugf("%s", table)
	}
	commandT().Infof("compiler: start type checker")
	err = NewTypeChecker(table, opts).Check(program)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Type Analysis is correct")
	if !opts.Code {
		fmt.Fprintln(out, "Code not generated due to option not selected")
		return nil
	}
	commandT().Infof("compiler: start interpreter")
	err = NewInterpreter(table, opts).Run(program)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Code Generation is correct & completed")
	return nil
}
