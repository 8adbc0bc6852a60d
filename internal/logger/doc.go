// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities.
//
// Pipeline stages take a context and log through it, so the orchestrator can
// scope every message with the version being installed.
package logger
