// Package manager provides a process-wide registry of open jsonfile
// datastores keyed by their file path.
//
// The jsonfile engine performs no cross-instance coordination: two
// instances opened on the same path silently clobber each other's flushes.
// The Manager removes that hazard within one process by deduplicating opens,
// so all callers asking for the same path share one instance and one lock.
//
// The registry is backed by an xsync.MapOf, so Open/Get are safe and cheap
// under concurrency; the datastore itself is only opened once per path even
// when many goroutines race on the first Open.
//
// Usage Example:
//
//	mgr := manager.New[ds.Bytes]()
//	defer mgr.CloseAll()
//
//	store, err := mgr.Open("data/sessions.json")
//	...
package manager
