// Package logger provides structured logging for NFTMesh.
//
// It wraps the standard library log/slog for structured JSON logging
// with a process-wide dynamically adjustable level and context-aware
// request ID propagation.
package logger
