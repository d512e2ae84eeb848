// Package logx wraps zerolog behind a small Field/Logger API and a Service
// that owns the sinks (console writer, append-only log file). Components take
// a Logger by value; the Service may re-Apply() sink config at runtime without
// invalidating loggers already handed out.
package logx
