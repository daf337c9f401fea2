package internal

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// syntaxT traces to the global syntax tracer, used by the tokenizer and the parser.
func syntaxT() tracing.Trace {
	return gtrace.SyntaxTracer
}

// coreT traces to the global core tracer, used by the symbol table and the type checker.
func coreT() tracing.Trace {
	return gtrace.CoreTracer
}

// interpreterT traces to the global interpreter tracer.
func interpreterT() tracing.Trace {
	return gtrace.InterpreterTracer
}

// commandT traces to the global command tracer, used by the driver.
func commandT() tracing.Trace {
	return gtrace.CommandTracer
}

// SetTraceLevel moves every tracer of the pipeline to level.
func SetTraceLevel(level tracing.TraceLevel) {
	for _, t := range []tracing.Trace{syntaxT(), coreT(), interpreterT(), commandT()} {
		t.SetTraceLevel(level)
	}
}
