package internal

import "errors"

// Every phase wraps one of those with %w, so callers can tell which phase stopped the pipeline.
var (
	ErrLexical          = errors.New("lexical error")
	ErrSyntax           = errors.New("syntax error")
	ErrDuplicateSymbol  = errors.New("duplicate symbol")
	ErrUndeclaredSymbol = errors.New("undeclared symbol")
	ErrIncompatible     = errors.New("incompatible types")
	ErrOpcodeNotFound   = errors.New("OP CODE NOT FOUND!")
	ErrRuntime          = errors.New("runtime error")
)
