package jsonfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tkoehler/jKV/lib/ds"
	dstesting "github.com/tkoehler/jKV/lib/ds/testing"
)

func Test(t *testing.T) {
	dstesting.RunDatastoreTests(t, "JSONFile", func(path string) (ds.IDatastore[ds.Bytes], error) {
		return Open[ds.Bytes](path)
	})
}

// --------------------------------------------------------------------------
// Open semantics
// --------------------------------------------------------------------------

func TestOpenMissingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatalf("open of a missing path must succeed, got %v", err)
	}

	// opening must not create the file
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("open of a missing path must not touch the filesystem")
	}

	if err := store.Set("key", ds.Bytes("value")); err != nil {
		t.Errorf("fresh store must be fully functional, Set failed: %v", err)
	}
}

func TestOpenEmptyFile(t *testing.T) {
	for name, content := range map[string]string{
		"ZeroBytes":          "",
		"Null":               "null",
		"NullWithWhitespace": "  null\n",
		"OnlyWhitespace":     " \n\t",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store.json")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}

			store, err := Open[ds.Bytes](path)
			if err != nil {
				t.Fatalf("expected an empty datastore, got error: %v", err)
			}

			results, err := store.Query(ds.Query[ds.Bytes]{Limit: ds.NoLimit})
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(results) != 0 {
				t.Errorf("expected no entries, got %d", len(results))
			}
		})
	}
}

func TestOpenRejectsCorruptFiles(t *testing.T) {
	for name, content := range map[string]string{
		"Array":        `[1,2,3]`,
		"String":       `"hello"`,
		"Number":       `42`,
		"InvalidJSON":  `{"key": [1,2`,
		"BadEntry":     `{"good": [1,2,3], "bad": "not-a-byte-array"}`,
		"OutOfRange":   `{"key": [1,2,999]}`,
		"NestedObject": `{"key": {"nested": true}}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store.json")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Open[ds.Bytes](path)
			if err == nil {
				t.Fatalf("expected open to fail for %s", content)
			}

			var dsErr *ds.Error
			if !errors.As(err, &dsErr) || dsErr.Code != ds.RetCCorrupted {
				t.Errorf("expected a corruption error, got %v", err)
			}
		})
	}
}

// --------------------------------------------------------------------------
// Flush semantics
// --------------------------------------------------------------------------

func TestFlushNoParentDir(t *testing.T) {
	store, err := Open[ds.Bytes]("")
	if err != nil {
		t.Fatalf("open of an empty path must succeed (nothing to load): %v", err)
	}

	err = store.Flush()
	var dsErr *ds.Error
	if !errors.As(err, &dsErr) || dsErr.Code != ds.RetCNoParentDir {
		t.Errorf("expected a no-parent-directory error, got %v", err)
	}
}

func TestFlushFailureLeavesDestinationAbsent(t *testing.T) {
	dir := t.TempDir()

	// the "parent directory" is a regular file, so the temp file cannot
	// be created there
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(blocker, "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatalf("open must treat an unreachable path as empty: %v", err)
	}

	if err := store.Set("key", ds.Bytes("value")); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(); err == nil {
		t.Fatal("expected flush to fail")
	}

	// in-memory state is retained, nothing on disk changed
	if value, ok, _ := store.Get("key"); !ok || !bytes.Equal(value, ds.Bytes("value")) {
		t.Errorf("in-memory state must survive a failed flush")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("destination must remain absent after a failed flush")
	}
}

func TestFlushFailureKeepsOldContent(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind for root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("stable", ds.Bytes{1}); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(); err != nil {
		t.Fatalf("first flush failed: %v", err)
	}

	flushed, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// make the next flush fail at temp file creation
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	if err := store.Set("fresh", ds.Bytes{2}); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(); err == nil {
		t.Fatal("expected flush to fail in a read-only directory")
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(flushed, current) {
		t.Errorf("destination must stay at its last successfully flushed state")
	}
}

func TestFlushLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("key", ds.Bytes("value")); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".jkv-") {
			t.Errorf("temporary file %s left behind after successful flush", e.Name())
		}
	}
}

func TestFlushedFileMatchesMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("a", ds.Bytes{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("b", ds.Bytes{3}); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// the file is a byte-exact encoding of the mapping at flush time
	expected, err := encodeMap(map[string]ds.Bytes{
		"a": {1, 2},
		"b": {3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, expected) {
		t.Errorf("expected on-disk image %s, got %s", expected, raw)
	}
}

// --------------------------------------------------------------------------
// Close and metadata
// --------------------------------------------------------------------------

func TestCloseFlushesBestEffort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("key", ds.Bytes("value")); err != nil {
		t.Fatal(err)
	}

	// no explicit Flush: Close must persist best effort
	if err := store.Close(); err != nil {
		t.Fatalf("Close must not fail: %v", err)
	}

	reload, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := reload.Get("key"); !ok {
		t.Errorf("expected Close to have flushed the entry")
	}
}

func TestCloseSwallowsFlushErrors(t *testing.T) {
	store, err := Open[ds.Bytes]("")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set("key", ds.Bytes("value")); err != nil {
		t.Fatal(err)
	}

	// flush cannot succeed for a path without a parent, Close must still
	// return nil - twice, it is idempotent
	if err := store.Close(); err != nil {
		t.Errorf("Close must swallow flush errors, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("repeated Close must stay nil, got %v", err)
	}
}

func TestGetInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := Open[ds.Bytes](path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Set("key", ds.Bytes("value")); err != nil {
		t.Fatal(err)
	}

	info, err := store.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", info.Entries)
	}
	if info.Path != path {
		t.Errorf("expected path %s, got %s", path, info.Path)
	}
	if info.StoreType != ds.ImplJSONFile {
		t.Errorf("expected store type %s, got %s", ds.ImplJSONFile, info.StoreType)
	}
}
