package testing

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/tkoehler/jKV/lib/ds"
)

// StoreFactory is a function that opens a datastore instance at the given
// file path. The suite calls it with paths inside fresh temporary
// directories and with paths of previously flushed stores to verify
// reload behavior.
type StoreFactory func(path string) (ds.IDatastore[ds.Bytes], error)

// RunDatastoreTests runs a conformance test suite for an IDatastore
// implementation over ds.Bytes values.
func RunDatastoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory)
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory)
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory)
		})

		t.Run("FlushReload", func(t *testing.T) {
			testFlushReload(t, factory)
		})

		t.Run("QueryBasic", func(t *testing.T) {
			testQueryBasic(t, factory)
		})

		t.Run("QueryPagination", func(t *testing.T) {
			testQueryPagination(t, factory)
		})

		t.Run("QueryKeysOnly", func(t *testing.T) {
			testQueryKeysOnly(t, factory)
		})

		t.Run("QueryDetached", func(t *testing.T) {
			testQueryDetached(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// open creates a store at a fresh path and fails the test on error.
func open(t *testing.T, factory StoreFactory) (ds.IDatastore[ds.Bytes], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := factory(path)
	if err != nil {
		t.Fatalf("failed to open datastore at %s: %v", path, err)
	}
	return store, path
}

func mustSet(t *testing.T, store ds.IDatastore[ds.Bytes], key string, value ds.Bytes) {
	t.Helper()
	if err := store.Set(key, value); err != nil {
		t.Fatalf("Set(%s) failed: %v", key, err)
	}
}

// seedQueryEntries inserts the fixture used by the query tests.
func seedQueryEntries(t *testing.T, store ds.IDatastore[ds.Bytes]) {
	t.Helper()
	mustSet(t, store, "foo1", ds.Bytes{6, 7, 8})
	mustSet(t, store, "foo2", ds.Bytes{6, 7, 8})
	mustSet(t, store, "foo3", ds.Bytes{7, 8, 9})
	mustSet(t, store, "foo4", ds.Bytes{10, 11, 12})
	mustSet(t, store, "foo5", ds.Bytes{13, 14, 15})
	mustSet(t, store, "bar1", ds.Bytes{0, 255, 127})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	testKey := "test-key"
	testValue1 := ds.Bytes("test-value1")
	testValue2 := ds.Bytes("test-value2")

	mustSet(t, store, testKey, testValue1)

	result, exists, err := store.Get(testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	mustSet(t, store, testKey, testValue2)

	result, exists, _ = store.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists, _ = store.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _, _ := store.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _, _ := store.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testHas(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	if ok, _ := store.Has("missing"); ok {
		t.Errorf("Expected Has to return false for a missing key")
	}

	mustSet(t, store, "present", ds.Bytes("value"))

	if ok, _ := store.Has("present"); !ok {
		t.Errorf("Expected Has to return true for a present key")
	}
}

func testDelete(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	// deleting an absent key reports false and changes nothing
	removed, err := store.Delete("missing")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed {
		t.Errorf("Expected Delete of absent key to return false")
	}

	mustSet(t, store, "doomed", ds.Bytes("value"))

	removed, _ = store.Delete("doomed")
	if !removed {
		t.Errorf("Expected Delete of present key to return true")
	}

	if ok, _ := store.Has("doomed"); ok {
		t.Errorf("Expected deleted key to report absent via Has")
	}
	if _, exists, _ := store.Get("doomed"); exists {
		t.Errorf("Expected deleted key to report absent via Get")
	}
}

func testFlushReload(t *testing.T, factory StoreFactory) {
	store, path := open(t, factory)

	mustSet(t, store, "foo", ds.Bytes{1, 2, 3})
	mustSet(t, store, "bar", ds.Bytes{0, 255, 127})

	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reload, err := factory(path)
	if err != nil {
		t.Fatalf("failed to reopen datastore: %v", err)
	}
	defer reload.Close()

	value, exists, _ := reload.Get("bar")
	if !exists || !bytes.Equal(value, ds.Bytes{0, 255, 127}) {
		t.Errorf("Expected bar=[0 255 127] after reload, got %v (exists=%v)", value, exists)
	}
	value, exists, _ = reload.Get("foo")
	if !exists || !bytes.Equal(value, ds.Bytes{1, 2, 3}) {
		t.Errorf("Expected foo=[1 2 3] after reload, got %v (exists=%v)", value, exists)
	}
}

func testQueryBasic(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	seedQueryEntries(t, store)

	// prefix+filter+sort produce foo5,foo4,foo3; skip 1 drops foo5
	results, err := store.Query(ds.Query[ds.Bytes]{
		Prefix: "fo",
		Filters: []ds.Filter[ds.Bytes]{
			{Op: ds.FilterNotEqual, Value: ds.Bytes{6, 7, 8}},
		},
		Orders: []ds.Order{ds.OrderByKeyDesc},
		Skip:   1,
		Limit:  ds.NoLimit,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Key != "foo4" || !bytes.Equal(results[0].Value, ds.Bytes{10, 11, 12}) {
		t.Errorf("Expected first result foo4=[10 11 12], got %s=%v", results[0].Key, results[0].Value)
	}
	if results[1].Key != "foo3" || !bytes.Equal(results[1].Value, ds.Bytes{7, 8, 9}) {
		t.Errorf("Expected second result foo3=[7 8 9], got %s=%v", results[1].Key, results[1].Value)
	}
}

func testQueryPagination(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	seedQueryEntries(t, store)

	// skip >= match count yields an empty result
	results, err := store.Query(ds.Query[ds.Bytes]{
		Prefix: "foo",
		Skip:   5,
		Limit:  ds.NoLimit,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result for skip == match count, got %d entries", len(results))
	}

	// limit 0 yields an empty result regardless of match count
	results, _ = store.Query(ds.Query[ds.Bytes]{Limit: 0})
	if len(results) != 0 {
		t.Errorf("Expected empty result for limit 0, got %d entries", len(results))
	}

	// limit caps the ordered result
	results, _ = store.Query(ds.Query[ds.Bytes]{
		Prefix: "foo",
		Orders: []ds.Order{ds.OrderByKeyAsc},
		Limit:  2,
	})
	if len(results) != 2 || results[0].Key != "foo1" || results[1].Key != "foo2" {
		t.Errorf("Expected [foo1 foo2], got %v", results)
	}
}

func testQueryKeysOnly(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	seedQueryEntries(t, store)

	results, err := store.Query(ds.Query[ds.Bytes]{
		Prefix:   "foo",
		Orders:   []ds.Order{ds.OrderByKeyAsc},
		Limit:    ds.NoLimit,
		KeysOnly: true,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}
	for _, e := range results {
		if len(e.Value) != 0 {
			t.Errorf("Expected zero value for key %s under keys-only, got %v", e.Key, e.Value)
		}
	}
}

func testQueryDetached(t *testing.T, factory StoreFactory) {
	store, _ := open(t, factory)
	defer store.Close()

	mustSet(t, store, "key", ds.Bytes{1, 2, 3})

	results, err := store.Query(ds.Query[ds.Bytes]{Limit: ds.NoLimit})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	// mutating the result must not leak into the store
	results[0].Value[0] = 42

	value, _, _ := store.Get("key")
	if !bytes.Equal(value, ds.Bytes{1, 2, 3}) {
		t.Errorf("Query results must be detached copies, store now holds %v", value)
	}
}
