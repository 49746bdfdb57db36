package ds

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Value Contract
// --------------------------------------------------------------------------

// Value is the contract every stored value type must fulfil.
//
// In addition to the two methods below, a value type must round-trip through
// encoding/json (either implicitly or via json.Marshaler/json.Unmarshaler on
// *T), since the on-disk representation of a datastore embeds each value's
// own JSON encoding. The zero value of T is used as the placeholder in
// keys-only query results.
type Value[T any] interface {
	// Clone returns a deep copy of the value. Engines hand out clones so
	// that callers can never mutate stored state through a returned value.
	Clone() T
	// Compare returns a negative number, zero or a positive number if the
	// receiver is less than, equal to or greater than other. The ordering
	// must be total; it drives query filters and value-based sorting.
	Compare(other T) int
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IDatastore is the generic interface for interacting with a key-value
// datastore. Mutating operations return only an error (nil on success),
// while read operations return the requested data along with an error.
//
// Implementations own the durability model: the jsonfile engine for example
// keeps all entries in memory and only writes to disk on Flush (and, best
// effort, on Close).
type IDatastore[T Value[T]] interface {
	// Set inserts or updates a key-value pair.
	Set(key string, value T) (err error)
	// Get returns a clone of the value for a key. The boolean return value
	// indicates whether a value for the key was found.
	Get(key string) (value T, loaded bool, err error)
	// Has returns whether a key exists in the datastore.
	Has(key string) (loaded bool, err error)
	// Delete removes a key-value pair. The boolean return value indicates
	// whether an entry was actually removed.
	Delete(key string) (removed bool, err error)
	// Query evaluates a declarative query against a snapshot of the current
	// entries and returns a detached, fully materialized result slice.
	// The returned entries never alias live datastore state.
	Query(q Query[T]) (results []Entry[T], err error)
	// Flush persists the current state of the datastore. Implementations
	// without a durable backing may return nil unconditionally.
	Flush() (err error)
	// Close releases the datastore. Engines with a durable backing perform
	// a best-effort flush first; its error is discarded. Callers needing a
	// durability guarantee must call Flush explicitly before Close.
	Close() (err error)
	// GetInfo returns metadata about the datastore.
	// It is not guaranteed that all fields are filled in or that the
	// information is up-to-date!
	GetInfo() (info StoreInfo, err error)
}

// --------------------------------------------------------------------------
// Store Metadata
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplJSONFile Implementation = "jsonfile"
)

// Feature represents datastore features as bit flags
type Feature uint64

const (
	FeatureSet    Feature = 1 << iota // Support for Set operations
	FeatureGet                        // Support for Get operations
	FeatureHas                        // Support for Has operations
	FeatureDelete                     // Support for Delete operations
	FeatureQuery                      // Support for Query operations
	FeatureFlush                      // Support for durable Flush operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureHas:
		return "Has"
	case FeatureDelete:
		return "Delete"
	case FeatureQuery:
		return "Query"
	case FeatureFlush:
		return "Flush"
	default:
		return "Unknown"
	}
}

// StoreInfo holds metadata about a datastore instance.
type StoreInfo struct {
	Path              string         `json:"path"`
	Entries           int            `json:"entries"`
	SizeBytes         int            `json:"size_bytes"`
	StoreType         Implementation `json:"store_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
	Err  error   // Optional underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCCorrupted:
		errorCode = "Corrupted"
	case RetCNoParentDir:
		errorCode = "NoParentDir"
	case RetCIOError:
		errorCode = "IOError"
	default:
		errorCode = "Unknown"
	}

	if e.Err != nil {
		return fmt.Sprintf("DatastoreError (code %s): %s: %v", errorCode, e.Msg, e.Err)
	}
	return fmt.Sprintf("DatastoreError (code %s): %s", errorCode, e.Msg)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new datastore Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new datastore Error wrapping an underlying cause.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Command executed successfully.
	RetCInternalError                // 1: Command failed due to an internal error.
	RetCCorrupted                    // 2: The on-disk state could not be decoded.
	RetCNoParentDir                  // 3: The datastore path has no parent directory.
	RetCIOError                      // 4: A filesystem operation failed.
)
