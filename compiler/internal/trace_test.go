package internal

import (
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// traceToTest sends every tracer at debug level to the log of t. The returned func puts the
// no-op tracers back, as the tracers must not outlive t.
func traceToTest(t *testing.T) func() {
	err := gtrace.CreateTracers(gotestingadapter.GetAdapter(t))
	if err != nil {
		t.Fatal(err)
	}
	SetTraceLevel(tracing.LevelDebug)
	return func() {
		_ = gtrace.CreateTracers(func() tracing.Trace { return gtrace.NoOpTrace })
	}
}
