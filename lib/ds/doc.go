// Package ds defines the storage-abstraction contract of jKV: the generic
// IDatastore interface, the Value contract stored value types must fulfil,
// the declarative Query description and its evaluation pipeline, and the
// typed error model shared by all engines.
//
// The package contains:
//   - IDatastore: the generic key-value datastore interface (Set, Get, Has,
//     Delete, Query, Flush, Close, GetInfo)
//   - Value: the constraint for stored value types (cloning and total
//     ordering; JSON round-tripping is required by convention)
//   - Query/Filter/Order: pure descriptions of a query, evaluated eagerly
//     by ApplyQuery over a detached snapshot of entries
//   - Error/RetCode: the typed error model used by all engines
//   - Bytes: a ready-to-use byte-slice value type
//
// Query Evaluation:
//
//	ApplyQuery runs a fixed stage order: prefix selection, conjunctive value
//	filtering, stable multi-criteria sorting, pagination (skip, then limit)
//	and the keys-only projection. Because it operates on an already detached
//	snapshot, evaluation is a pure function: concurrent datastore mutations
//	can neither affect nor be affected by an in-flight query.
//
// Engines implementing IDatastore live in subpackages; see lib/ds/jsonfile
// for the single-JSON-file engine. The lib/ds/testing package provides a
// conformance suite for new engine implementations.
package ds
