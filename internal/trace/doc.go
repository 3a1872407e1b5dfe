// Package trace records what the checker is doing: runs, fix passes and
// per-file work.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	indentguard check --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelPhase: Driver and fix pass boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything, including pipeline stages inside a file
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "pass 1", trace.SpanFromContext(ctx))
//	ctx = trace.WithSpan(ctx, span)
//	defer span.End("")
package trace
