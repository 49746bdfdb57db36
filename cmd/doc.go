// Package cmd implements the command-line interface for the jKV datastore.
// It provides a hierarchical command structure for inspecting and mutating
// a JSON-file-backed key-value store.
//
// The package is organized into subpackages:
//
//   - kv: Commands for datastore operations (get, set, delete, query, etc.)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See jkv -help for a list of all commands.
package cmd
