// Package testing provides a standardised conformance test suite for
// datastore implementations that satisfy the ds.IDatastore interface.
//
// The suite exercises the interface contract over ds.Bytes values: basic
// mutation semantics, flush-and-reload round-trips, the query pipeline's
// stage order and pagination boundaries, and the detachment guarantee of
// query results.
//
// Example usage:
//
//	func Test(t *testing.T) {
//		dstesting.RunDatastoreTests(t, "JSONFile", func(path string) (ds.IDatastore[ds.Bytes], error) {
//			return jsonfile.Open[ds.Bytes](path)
//		})
//	}
package testing
