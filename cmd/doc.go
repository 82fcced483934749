// Package cmd implements the command-line interface for the tengu-travels
// in-memory travels service. It provides a hierarchical command structure
// for running the server and for benchmarking it.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the HTTP server
//   - perf: Commands for benchmarking the stores with a synthetic corpus
//   - util: Shared utilities for command-line processing (internal use)
//
// See tengu-travels -help for a list of all commands.
package cmd
