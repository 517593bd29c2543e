// Package types defines the core data structures for the agent coordination engine.
//
// This package contains all the fundamental types shared between the parser,
// the coordinator and the security framework, including:
//   - Workflow definitions and step shapes
//   - Execution modes and options
//   - Worker responses and per-step results
//   - Execution reports and structured error records
//   - Capability configuration consumed by the security framework
package types
