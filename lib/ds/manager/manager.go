package manager

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"

	"github.com/tkoehler/jKV/lib/ds"
	"github.com/tkoehler/jKV/lib/ds/jsonfile"
)

// Manager is a process-wide registry of open datastores keyed by file path.
// It guarantees that within one process, one path maps to at most one live
// datastore instance, which keeps the engine's single-writer assumption
// honest across independent callers.
type Manager[T ds.Value[T]] struct {
	stores *xsync.MapOf[string, ds.IDatastore[T]]
	log    *logrus.Entry
}

// New creates an empty Manager.
//
// Thread-safety: the returned Manager is safe for concurrent use.
func New[T ds.Value[T]]() *Manager[T] {
	return &Manager[T]{
		stores: xsync.NewMapOf[string, ds.IDatastore[T]](),
		log:    logrus.WithField("component", "ds-manager"),
	}
}

// Open returns the datastore already open for path, or opens a new one.
// Concurrent calls for the same path yield the same instance.
func (m *Manager[T]) Open(path string) (ds.IDatastore[T], error) {
	if store, ok := m.stores.Load(path); ok {
		return store, nil
	}

	store, err := jsonfile.Open[T](path)
	if err != nil {
		return nil, err
	}

	actual, raced := m.stores.LoadOrStore(path, store)
	if raced {
		// Another goroutine opened the same path first. The loser is a
		// freshly loaded instance with no writes to lose, so it is simply
		// abandoned without a Close (which would flush and race the winner).
		return actual, nil
	}

	m.log.WithField("path", path).Debug("opened datastore")
	return store, nil
}

// Get returns the open datastore for path without opening one.
func (m *Manager[T]) Get(path string) (ds.IDatastore[T], bool) {
	return m.stores.Load(path)
}

// Len returns the number of currently open datastores.
func (m *Manager[T]) Len() int {
	return m.stores.Size()
}

// CloseAll flushes and closes every open datastore, best effort. Flush
// errors are logged and do not stop the teardown; the corresponding
// in-memory state is simply not durable. The Manager is empty afterwards
// and can be reused.
func (m *Manager[T]) CloseAll() {
	m.stores.Range(func(path string, store ds.IDatastore[T]) bool {
		if err := store.Flush(); err != nil {
			m.log.WithField("path", path).WithError(err).Warn("flush on close failed")
		}
		_ = store.Close()
		m.stores.Delete(path)
		return true
	})
}
