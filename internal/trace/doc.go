// Package trace records what the checker does while it runs.
//
// Tracing is enabled from the command line:
//
//	emptylines check --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event through a zerolog logger
//   - RingTracer: keeps the last N events in memory for dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Events carry a Scope. The Level decides which scopes are kept:
// phase keeps driver and pass events, detail adds per-file events
// (including skipped fixes), debug keeps everything.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "analyze", 0)
//	defer span.End("")
package trace
