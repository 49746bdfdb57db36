package jsonfile

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/tkoehler/jKV/lib/ds"
)

// --------------------------------------------------------------------------
// Persisted Map Codec
// --------------------------------------------------------------------------

// The on-disk image of a datastore is a single UTF-8 JSON document. The
// accepted top-level shapes are: a missing file, a completely empty file,
// the literal null (all three decode to an empty mapping) and a JSON object
// whose values are the value type's own JSON encoding. Everything else is
// rejected as corruption.

var jsonNull = []byte("null")

// loadFile reads and decodes the datastore file at path.
// A path that does not exist (or cannot be stat'ed) yields an empty mapping
// without touching the filesystem any further.
func loadFile[T ds.Value[T]](path string) (map[string]T, error) {
	if _, err := os.Stat(path); err != nil {
		// Missing file, new datastore. Matches the semantics of a plain
		// existence check: any stat failure is treated as "not there yet"
		// and surfaces later on Flush if the path is truly unusable.
		return map[string]T{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ds.WrapError(ds.RetCIOError, "failed to read datastore file", err)
	}

	return decodeMap[T](raw)
}

// decodeMap decodes the raw file content into a fully materialized mapping.
// Every entry is decoded eagerly; a single malformed entry fails the whole
// decode and no partial mapping is ever produced.
func decodeMap[T ds.Value[T]](raw []byte) (map[string]T, error) {
	trimmed := bytes.TrimSpace(raw)

	// An empty file would make the JSON decoder error out ("unexpected end
	// of JSON input"), so zero bytes are handled before decoding. The
	// literal null is likewise an empty mapping.
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return map[string]T{}, nil
	}

	var rawEntries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &rawEntries); err != nil {
		return nil, ds.WrapError(ds.RetCCorrupted, "expected top-level JSON object", err)
	}

	content := make(map[string]T, len(rawEntries))
	for key, rawValue := range rawEntries {
		var value T
		if err := json.Unmarshal(rawValue, &value); err != nil {
			return nil, ds.WrapError(ds.RetCCorrupted, "failed to decode value for key "+key, err)
		}
		content[key] = value
	}

	return content, nil
}

// encodeMap serializes the mapping into its on-disk JSON object form.
func encodeMap[T ds.Value[T]](content map[string]T) ([]byte, error) {
	data, err := json.Marshal(content)
	if err != nil {
		return nil, ds.WrapError(ds.RetCInternalError, "failed to encode datastore content", err)
	}
	return data, nil
}
