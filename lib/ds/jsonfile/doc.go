// Package jsonfile implements a ds.IDatastore whose entire extent is
// persisted as one plain JSON file. It targets embedding inside larger
// systems where durability and simplicity matter more than scale: the full
// set of entries lives in memory, the file on disk is only touched on Open,
// Flush and Close.
//
// Key Features:
//   - Load-on-open with strict corruption detection (no partial mapping is
//     ever produced from a malformed file)
//   - Crash-safe atomic flush: write-temp-then-rename in the destination
//     directory, so readers never observe a half-written file
//   - Best-effort flush on Close with the error intentionally discarded
//   - Eager, snapshot-based query evaluation via ds.ApplyQuery
//   - Operation counters and flush timings via VictoriaMetrics metrics
//
// On-Disk Format:
//
//	The file is a UTF-8 JSON document. The top level is either absent (no
//	file yet), zero bytes, the literal null (all treated as an empty
//	datastore) or a JSON object whose keys are entry keys and whose values
//	are the value type's own JSON encoding. Any other top-level shape fails
//	Open with a ds.RetCCorrupted error.
//
// Durability Model:
//
//	Mutations (Set, Delete) are memory-only and always succeed. Flush
//	serializes the whole mapping under the lock, then writes a temporary
//	file in the destination directory, syncs it and atomically renames it
//	over the destination. A failed flush leaves the destination exactly at
//	its last successfully flushed state and removes the temporary file.
//	Close flushes best-effort and swallows the error - explicit Flush is
//	the only durability guarantee.
//
// Thread Safety:
//
//	One coarse mutex protects the in-memory mapping. All primitive
//	operations and the query snapshot hold it for their full (purely
//	in-memory) duration; Flush holds it only while serializing, never over
//	disk I/O. There is no cross-instance or cross-process coordination:
//	two instances opened on the same path will race and can silently
//	clobber each other's flushes. Single-writer-process is assumed.
//
// Usage Example:
//
//	store, err := jsonfile.Open[ds.Bytes]("data/users.json")
//	if err != nil {
//		// the file exists but is corrupted
//	}
//	defer store.Close()
//
//	_ = store.Set("alice", ds.Bytes("..."))
//	if err := store.Flush(); err != nil {
//		// nothing lost: in-memory state is intact, disk is at the
//		// previous flush; retry later
//	}
//
//	results, _ := store.Query(ds.Query[ds.Bytes]{
//		Prefix: "ali",
//		Orders: []ds.Order{ds.OrderByKeyAsc},
//		Limit:  ds.NoLimit,
//	})
package jsonfile
