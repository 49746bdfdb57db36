package jsonfile

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tkoehler/jKV/lib/ds"
)

// tmpPattern is the name pattern for the temporary files used by Flush.
const tmpPattern = ".jkv-*.tmp"

// storeImpl implements ds.IDatastore backed by a single JSON file.
// The in-memory mapping is the single source of truth while the process
// runs; the file is the durable image, updated only on Flush and Close.
type storeImpl[T ds.Value[T]] struct {
	path string

	mu             sync.Mutex
	content        map[string]T
	lastFlushBytes int
}

// Open opens or creates a datastore backed by the JSON file at path.
//
// If the path does not exist, a new empty datastore is created without
// touching the filesystem. If it exists, the full set of entries is loaded
// eagerly; a file that cannot be decoded into a mapping of T fails the open
// with a ds.RetCCorrupted error and no datastore instance is produced.
//
// Thread-safety: the returned datastore is safe for concurrent use. Two
// instances opened on the same path are not coordinated and will clobber
// each other's flushes; the engine assumes a single writer process.
func Open[T ds.Value[T]](path string) (ds.IDatastore[T], error) {
	content, err := loadFile[T](path)
	if err != nil {
		return nil, err
	}
	return &storeImpl[T]{
		path:    path,
		content: content,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ds.IDatastore)
// --------------------------------------------------------------------------

// Set inserts or overwrites the entry for key. No disk I/O happens; the
// returned error is always nil for this engine.
func (s *storeImpl[T]) Set(key string, value T) error {
	setCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[key] = value
	return nil
}

func (s *storeImpl[T]) Get(key string) (T, bool, error) {
	getCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.content[key]
	if !ok {
		var zero T
		return zero, false, nil
	}
	return value.Clone(), true, nil
}

func (s *storeImpl[T]) Has(key string) (bool, error) {
	hasCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.content[key]
	return ok, nil
}

func (s *storeImpl[T]) Delete(key string) (bool, error) {
	deleteCalls.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.content[key]
	if ok {
		delete(s.content, key)
	}
	return ok, nil
}

// Query takes a detached snapshot of the current entries under the lock and
// evaluates the full pipeline eagerly against it. The returned slice never
// references live datastore state: values are cloned at snapshot time.
func (s *storeImpl[T]) Query(q ds.Query[T]) ([]ds.Entry[T], error) {
	queryCalls.Inc()

	s.mu.Lock()
	snapshot := make([]ds.Entry[T], 0, len(s.content))
	for key, value := range s.content {
		snapshot = append(snapshot, ds.Entry[T]{Key: key, Value: value.Clone()})
	}
	s.mu.Unlock()

	return ds.ApplyQuery(snapshot, q), nil
}

// Flush serializes the whole mapping and atomically replaces the datastore
// file: the encoded state is written to a temporary file in the destination
// directory, synchronized to stable storage and renamed over the
// destination. Any failure leaves the destination untouched (at its last
// successfully flushed state, or absent if never flushed); the in-memory
// state is retained and the caller may retry.
//
// The lock is only held while the mapping is snapshotted and serialized,
// not over the disk I/O.
func (s *storeImpl[T]) Flush() error {
	flushCalls.Inc()

	// The temporary file must live in the destination directory so the
	// final rename stays on one filesystem and is atomic.
	parent := filepath.Dir(s.path)
	if s.path == "" || parent == s.path {
		return ds.NewError(ds.RetCNoParentDir, "datastore path has no parent directory")
	}

	s.mu.Lock()
	data, err := encodeMap(s.content)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	start := time.Now()

	tmp, err := os.CreateTemp(parent, tmpPattern)
	if err != nil {
		return ds.WrapError(ds.RetCIOError, "failed to create temporary file", err)
	}

	if err := writeAndReplace(tmp, data, s.path); err != nil {
		// Never leave the temporary file behind on failure.
		_ = os.Remove(tmp.Name())
		return err
	}

	s.mu.Lock()
	s.lastFlushBytes = len(data)
	s.mu.Unlock()

	flushDuration.UpdateDuration(start)
	flushedBytes.Add(len(data))
	return nil
}

// writeAndReplace writes data into tmp, syncs it to stable storage and
// atomically renames it over dst. tmp is closed in all cases.
func writeAndReplace(tmp *os.File, data []byte, dst string) error {
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ds.WrapError(ds.RetCIOError, "failed to write temporary file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ds.WrapError(ds.RetCIOError, "failed to sync temporary file", err)
	}
	if err := tmp.Close(); err != nil {
		return ds.WrapError(ds.RetCIOError, "failed to close temporary file", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return ds.WrapError(ds.RetCIOError, "failed to replace datastore file", err)
	}
	return nil
}

// Close performs a best-effort flush and discards its result. Close never
// fails for an I/O reason; any change since the last successful flush is
// simply not durable. It is safe to call Close more than once.
func (s *storeImpl[T]) Close() error {
	_ = s.Flush()
	return nil
}

func (s *storeImpl[T]) GetInfo() (ds.StoreInfo, error) {
	s.mu.Lock()
	entries := len(s.content)
	sizeBytes := s.lastFlushBytes
	s.mu.Unlock()

	return ds.StoreInfo{
		Path:      s.path,
		Entries:   entries,
		SizeBytes: sizeBytes,
		StoreType: ds.ImplJSONFile,
		SupportedFeatures: []ds.Feature{
			ds.FeatureSet, ds.FeatureGet, ds.FeatureHas,
			ds.FeatureDelete, ds.FeatureQuery, ds.FeatureFlush,
		},
		Metadata: &struct {
			Info string `json:"info"`
		}{
			Info: "SizeBytes reflects the encoded size at the last successful flush and may lag behind the in-memory state.",
		},
	}, nil
}
