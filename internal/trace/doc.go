// Package trace records what the analyzer did and in which order: one span
// per run, one per body file, one per body, and at debug level a point for
// every move path, move and init.
//
// Tracers:
//
//   - Nop discards everything and is what an untraced context carries.
//   - StreamTracer writes text or NDJSON lines as events arrive.
//   - RingTracer keeps the latest events for the crash dump.
//   - MultiTracer fans out to several tracers.
//
// Spans nest through the context. WithUnit names the body file so that
// events from parallel workers can be told apart:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.StartSpan(trace.WithUnit(ctx, path), trace.ScopePass, "analyze_file")
//	defer span.End("")
//
// From the command line:
//
//	moveck check --trace=- --trace-level=detail bodies/
package trace
